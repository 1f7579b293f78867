package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/harrisonrobin/taskboard/pkg/auth"
	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

var Version = "dev"

func main() {
	c := &cli{}
	err := newRootCmd(c).Execute()
	c.flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", c.explain(err))
		os.Exit(1)
	}
}

// explain turns the errors a user can act on into instructions. A rejected
// credential is removed from the cache when the cache supplied it.
func (c *cli) explain(err error) string {
	switch {
	case errors.Is(err, tracker.ErrUnauthenticated):
		return "no credential found: run 'taskboard auth token <token>' or set TASKBOARD_TOKEN"
	case errors.Is(err, tracker.ErrAuthExpired):
		src := c.credential
		if src.Env != "" {
			return fmt.Sprintf("%v\nthe token in %s was rejected: update or unset it", err, src)
		}
		if !src.Cached() {
			return fmt.Sprintf("%v\nthe credential was rejected: run 'taskboard auth token <token>'", err)
		}
		if clearErr := auth.Clear(); clearErr != nil {
			logging.Logger.Warnf("could not clear cached token: %v", clearErr)
		}
		return fmt.Sprintf("%v\nthe cached credential was rejected and has been removed: run 'taskboard auth token <token>'", err)
	}
	return err.Error()
}
