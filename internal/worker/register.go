package worker

import (
	"github.com/hibiken/asynq"
)

func RegisterHandlers(mux *asynq.ServeMux, handler *ImportTaskHandler) {
	mux.HandleFunc(TypeImportValidate, handler.HandleValidate)
	mux.HandleFunc(TypeImportSubmit, handler.HandleSubmit)
}
