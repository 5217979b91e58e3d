package http

import (
	"github.com/orris-inc/channelsync/internal/application/channel/usecases"
	"github.com/orris-inc/channelsync/internal/infrastructure/auth"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	buildAuthorizationURLUC *usecases.BuildAuthorizationURLUseCase
	handleCallbackUC        *usecases.HandleCallbackUseCase
	syncChannelsUC          *usecases.SyncChannelsUseCase
	listProjectChannelsUC   *usecases.ListProjectChannelsUseCase
	disconnectChannelUC     *usecases.DisconnectChannelUseCase
}

func (c *Container) initUseCases() {
	cfg := c.cfg
	log := c.log
	repos := c.repos

	syncUC := usecases.NewSyncChannelsUseCase(
		repos.channelRepo,
		repos.channelStatsRepo,
		repos.postRepo,
		c.registry,
		usecases.SyncOptions{
			Concurrency:       cfg.Sync.Concurrency,
			ConnectionTimeout: cfg.Sync.Timeout,
			ExpiryGrace:       cfg.Sync.ExpiryGrace,
		},
		log.Named("sync"),
	)

	c.ucs = &allUseCases{
		buildAuthorizationURLUC: usecases.NewBuildAuthorizationURLUseCase(
			repos.projectRepo,
			c.registry,
			c.stateCodec,
			c.verifierStore,
			auth.GeneratePKCE,
			log.Named("authorize"),
		),
		handleCallbackUC: usecases.NewHandleCallbackUseCase(
			repos.projectRepo,
			repos.channelRepo,
			repos.channelStatsRepo,
			c.registry,
			c.stateCodec,
			c.verifierStore,
			c.txMgr,
			syncUC,
			log.Named("callback"),
		),
		syncChannelsUC:        syncUC,
		listProjectChannelsUC: usecases.NewListProjectChannelsUseCase(repos.projectRepo, repos.channelRepo, log),
		disconnectChannelUC:   usecases.NewDisconnectChannelUseCase(repos.projectRepo, repos.channelRepo, c.registry, log.Named("disconnect")),
	}
}
