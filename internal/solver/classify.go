package solver

import "fluidnet/internal/domain"

const (
	MessageSuccess     = "Done!"
	MessageMarginal    = "Solution Not Converged!\nReview parameters and connections."
	MessageFailed      = "Calculation Failed!"
	MessageNoResponse  = "Solver is not responding."

	// MessageUnreachable is the failure headline followed by MessageNoResponse
	MessageUnreachable = MessageFailed + "\n" + MessageNoResponse
)

// Outcome is the user-facing classification of one solve attempt
type Outcome struct {
	Status   domain.Status     `json:"status"`
	Severity domain.Severity   `json:"severity"`
	Message  string            `json:"message"`
	Result   map[string]string `json:"result,omitempty"`
}

// ShowsResults reports whether the outcome's overlays should be rendered;
// otherwise all overlays are cleared
func (o Outcome) ShowsResults() bool {
	return o.Status == domain.StatusSuccess || o.Status == domain.StatusMarginal
}

// Classify maps a solve response, or the error that prevented one, to an
// outcome. Any error, transport or otherwise, is reported as a local error outcome with a
// fixed message; unrecognized statuses are failures.
func Classify(resp *domain.SolveResponse, err error) Outcome {
	if err != nil || resp == nil {
		return Outcome{
			Status:   domain.StatusError,
			Severity: domain.SeverityError,
			Message:  MessageUnreachable,
		}
	}

	switch resp.Status {
	case domain.StatusSuccess:
		return Outcome{
			Status:   domain.StatusSuccess,
			Severity: domain.SeveritySuccess,
			Message:  MessageSuccess,
			Result:   resp.Result,
		}
	case domain.StatusMarginal:
		return Outcome{
			Status:   domain.StatusMarginal,
			Severity: domain.SeverityWarning,
			Message:  MessageMarginal,
			Result:   resp.Result,
		}
	default:
		msg := MessageFailed
		if resp.Message != "" {
			msg += "\n" + resp.Message
		}
		return Outcome{
			Status:   domain.StatusError,
			Severity: domain.SeverityError,
			Message:  msg,
		}
	}
}
