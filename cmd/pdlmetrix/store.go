package main

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pdlmetrix/pdlmetrix/internal/common/clock"
	"github.com/pdlmetrix/pdlmetrix/internal/common/uuid"
	"github.com/pdlmetrix/pdlmetrix/internal/config"
	leagueRepo "github.com/pdlmetrix/pdlmetrix/internal/repositories/league"
	"github.com/pdlmetrix/pdlmetrix/internal/services/league"
)

// store is an open league repository and whatever backs it.
type store struct {
	Repository leagueRepo.Repository
	client     *redis.Client
}

// Close releases the store's connections.
func (s *store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// openStore connects the repository selected by store.driver.
func openStore(c *config.Config, logger *logrus.Logger) (*store, error) {
	switch c.Store.Driver {
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
		})
		repo, err := leagueRepo.NewRedis(&leagueRepo.Config{
			RedisClient: client,
			KeyPrefix:   c.Store.Redis.KeyPrefix,
		})
		if err != nil {
			client.Close()
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"addr": c.Store.Redis.Addr,
			"db":   c.Store.Redis.DB,
		}).Debug("connected to redis")
		return &store{Repository: repo, client: client}, nil
	case config.DriverMemory, "":
		logger.Debug("using in-memory store")
		return &store{Repository: leagueRepo.NewMemory()}, nil
	default:
		return nil, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
}

// newLeague builds a league service over an open store.
func newLeague(st *store, c *config.Config, logger *logrus.Logger) (league.Service, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	return league.NewService(&league.Config{
		Repository:    st.Repository,
		Clock:         clock.New(),
		UUIDGenerator: uuid.New(),
		Location:      loc,
		Logger:        logrus.NewEntry(logger),
	})
}

// requirePersistentStore rejects commands whose result would vanish with the
// process, as everything in a memory store does.
func requirePersistentStore(c *config.Config, command string) error {
	if strings.EqualFold(c.Store.Driver, config.DriverRedis) {
		return nil
	}
	return fmt.Errorf("%s needs a persistent store: store.driver is %q, set it to %q", command, c.Store.Driver, config.DriverRedis)
}
