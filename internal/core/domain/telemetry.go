package domain

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// JobOutcome is how a single compile or link job ended.
type JobOutcome string

const (
	// OutcomeBuilt means the job invoked a tool and it succeeded.
	OutcomeBuilt JobOutcome = "built"
	// OutcomeUpToDate means the oracle found nothing to do.
	OutcomeUpToDate JobOutcome = "up-to-date"
	// OutcomeFailed means the tool failed or could not be started.
	OutcomeFailed JobOutcome = "failed"
	// OutcomeSkipped means the job did not run because the build was aborted or the target ignored.
	OutcomeSkipped JobOutcome = "skipped"
)

// BuildSummary counts job outcomes of one build run.
type BuildSummary struct {
	Compiled int
	Linked   int
	UpToDate int
	Failed   int
	Skipped  int
}

// Record adds one outcome to the summary. link selects the Linked counter for built jobs.
func (s *BuildSummary) Record(o JobOutcome, link bool) {
	switch o {
	case OutcomeBuilt:
		if link {
			s.Linked++
		} else {
			s.Compiled++
		}
	case OutcomeUpToDate:
		s.UpToDate++
	case OutcomeFailed:
		s.Failed++
	case OutcomeSkipped:
		s.Skipped++
	}
}
