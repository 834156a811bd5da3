package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/config"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/repository"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/timesheet"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repository
	translator ut.Translator
	service    *timesheet.Service
	roster     timesheet.RosterSource

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, svc *timesheet.Service, roster timesheet.RosterSource) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		translator: trans,
		service:    svc,
		roster:     roster,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h.Mux.Handle("/metrics", promhttp.Handler())

	// Slack 的交互回调，通过签名校验请求来源
	h.Mux.With(h.verifySlackSignature).Post("/slack/interactions", h.HandleInteraction)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 只有管理员可以调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Post("/reminders/dispatch", h.DispatchReminders)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.GetAllUsers)
			r.Post("/sync", h.SyncUsers)
			r.Route("/{slackID}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.Patch("/", h.UpdateUser)
			})
		})

		r.Get("/timesheets", h.GetTimesheets)
	})
}
