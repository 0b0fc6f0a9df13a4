package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitness-tracker/internal/domain"
	"fitness-tracker/internal/service"
	httpez "fitness-tracker/internal/transport/http/ez"
)

type StatsHandler struct {
	svc *service.StatsService
	log *zap.Logger
}

func NewStatsHandler(svc *service.StatsService, l *zap.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, log: l}
}

func (h *StatsHandler) MountAPI(_, authed *gin.RouterGroup) {
	httpez.RegisterAction(httpez.New(authed, h.log), httpez.Action[struct{}, domain.Summary]{
		Method: http.MethodGet,
		Path:   "/dashboard/summary",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.Summary, error) {
			return h.svc.Summary(c.Request.Context(), httpez.Caller(c))
		},
	})
}
