package authorize

import (
	_ "embed"

	"github.com/casbin/casbin/v2/model"
)

//go:embed casbin_model.conf
var modelText string

// NewModel parses the embedded role/resource/action model.
func NewModel() (model.Model, error) {
	return model.NewModelFromString(modelText)
}
