package scenario

import (
	"fmt"
	"log"
	"strings"
)

// AssertionMode controls what a failed dice.assert does.
type AssertionMode int

const (
	// AssertionStrict fails the run when any assertion fails.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs failed assertions and lets the run succeed.
	AssertionLogOnly
)

// Assertions collects assertion failures for one run.
type Assertions struct {
	Mode     AssertionMode
	Logger   *log.Logger
	failures []string
}

// Fail records a failed assertion.
func (a *Assertions) Fail(message string) {
	a.failures = append(a.failures, message)
	if a.Logger != nil {
		a.Logger.Printf("assertion failed: %s", message)
	}
}

// Failures returns the recorded failure messages in order.
func (a *Assertions) Failures() []string {
	return append([]string(nil), a.failures...)
}

// Err returns an error summarizing failures in strict mode.
func (a *Assertions) Err() error {
	if len(a.failures) == 0 || a.Mode == AssertionLogOnly {
		return nil
	}
	return fmt.Errorf("%d assertion(s) failed: %s", len(a.failures), strings.Join(a.failures, "; "))
}
