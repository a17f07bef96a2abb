package app

import (
	"go.uber.org/zap"

	"github.com/nhle/teaminbox/internal/action"
	"github.com/nhle/teaminbox/internal/authz"
	"github.com/nhle/teaminbox/internal/feed"
	"github.com/nhle/teaminbox/internal/httpapi"
	"github.com/nhle/teaminbox/internal/model"
	"github.com/nhle/teaminbox/internal/store"
	appsync "github.com/nhle/teaminbox/internal/sync"
)

// Services bundles the engine the TUI drives: the two service clients,
// the feed poller and the action coordinator.
type Services struct {
	Feed        *feed.Client
	Authz       *authz.Client
	Poller      *appsync.Poller
	Coordinator *action.Coordinator
}

// NewServices wires the clients, poller and coordinator from cfg. The
// poller caches every fetch in s and is the coordinator's refresher.
func NewServices(
	cfg *model.AppConfig,
	token string,
	s store.Store,
	log *zap.SugaredLogger,
	opts ...httpapi.Option,
) *Services {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	opts = append([]httpapi.Option{httpapi.WithLogger(log.Named("http"))}, opts...)

	fc := feed.NewClient(cfg.Services.NotificationsURL, token, opts...)
	ac := authz.NewClient(cfg.Services.AuthorizationURL, token, opts...)

	p := appsync.New(fc,
		appsync.WithInterval(cfg.PollInterval()),
		appsync.WithFetchTimeout(cfg.FetchTimeout()),
		appsync.WithStore(s),
		appsync.WithLogger(log.Named("feed")),
	)

	c := action.New(ac, fc, p,
		action.WithLogger(log.Named("action")),
		action.WithDelays(cfg.RefreshDelay(), cfg.ProcessingHold()),
	)

	return &Services{Feed: fc, Authz: ac, Poller: p, Coordinator: c}
}
