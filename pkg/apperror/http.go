package apperror

import (
	"net/http"

	"civic-report/pkg/utils"

	"go.uber.org/zap"
)

// Translator turns any error into the JSON failure envelope. Handlers and
// middleware share one instance so every path answers the same way.
type Translator struct {
	log *zap.Logger
	dev bool
}

func NewTranslator(log *zap.Logger, development bool) *Translator {
	return &Translator{
		log: log.With(zap.String("component", "errors")),
		dev: development,
	}
}

func (t *Translator) Write(w http.ResponseWriter, r *http.Request, err error) {
	appErr := From(err)

	fields := []zap.Field{
		zap.String("kind", string(appErr.Kind)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}

	if !appErr.Operational() {
		t.log.Error("Request failed", fields...)

		if t.dev {
			utils.ResponseError(w, appErr.Message, err.Error())
			return
		}
		utils.ResponseError(w, GenericMessage, "")
		return
	}

	t.log.Debug("Request rejected", fields...)

	var detail string
	if t.dev && appErr.Err != nil {
		detail = appErr.Err.Error()
	}

	var fieldErrors any
	if len(appErr.Fields) > 0 {
		fieldErrors = appErr.Fields
	}

	utils.ResponseJSON(w, appErr.StatusCode(), utils.Response{
		Status:  utils.StatusFail,
		Message: appErr.Message,
		Errors:  fieldErrors,
		Error:   detail,
	})
}
