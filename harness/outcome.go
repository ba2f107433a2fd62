package harness

// Outcome classifies the result of one test.
type Outcome int

const (
	OutcomePassed Outcome = iota
	OutcomeCompileFailed
	OutcomeRunFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeCompileFailed:
		return "compile-failed"
	case OutcomeRunFailed:
		return "run-failed"
	default:
		return "unknown"
	}
}

// TestResult pairs a test with its outcome.
type TestResult struct {
	Name    string
	Source  string
	Outcome Outcome
}

// BatchResult aggregates one full batch run.
type BatchResult struct {
	Results []TestResult
	Halted  bool
}

// AllPassed reports whether every executed test passed and the batch ran to
// completion.
func (b BatchResult) AllPassed() bool {
	if b.Halted {
		return false
	}
	for _, result := range b.Results {
		if result.Outcome != OutcomePassed {
			return false
		}
	}
	return true
}

// Failed counts the executed tests that did not pass.
func (b BatchResult) Failed() int {
	failed := 0
	for _, result := range b.Results {
		if result.Outcome != OutcomePassed {
			failed++
		}
	}
	return failed
}
