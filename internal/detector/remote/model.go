package remote

import (
	"github.com/0mao0/minerpick/internal/model"
)

// DetectResponse is the body of a /tables answer. Regions that could not be
// analyzed are listed in Errors instead of Tables.
type DetectResponse struct {
	Tables map[string]model.TableDefinition `json:"tables"`
	Errors map[string]string                `json:"errors,omitempty"`
}
