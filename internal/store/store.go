// Package store is the MongoDB persistence layer. It owns every collection
// access; other packages only call its exported operations.
package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"stride/internal/models"
	"stride/internal/utils"
)

// Collection names.
const (
	colUsers         = "users"
	colMeals         = "meals"
	colUserMeals     = "user_meals"
	colWorkouts      = "workouts"
	colUserWorkouts  = "user_workouts"
	colNotifications = "notifications"
)

// modelCount is the number of typed collections this layer manages; surfaced
// in the dashboard's database panel.
const modelCount = 6

// Connection-state codes, following the mongoose readyState convention the
// dashboard expects.
const (
	stateDisconnected = 0
	stateConnected    = 1
	stateConnecting   = 2
)

const (
	healthRefreshInterval = 30 * time.Second
	healthPingTimeout     = 3 * time.Second
)

// Store wraps the Mongo client and a cached health view. The cache lets
// metric snapshots include store connectivity without ever blocking on a
// network round trip.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *utils.Logger

	healthMu sync.RWMutex
	health   models.DatabaseHealth

	stop chan struct{}
	wg   sync.WaitGroup
}

// Connect dials MongoDB, verifies the connection and starts the background
// health refresher.
func Connect(ctx context.Context, uri, dbName string, log *utils.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	s := &Store{
		client: client,
		db:     client.Database(dbName),
		log:    log,
		health: models.DatabaseHealth{State: stateConnecting, Models: modelCount},
		stop:   make(chan struct{}),
	}

	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	s.refreshHealth(ctx)

	s.wg.Add(1)
	go s.healthLoop()

	return s, nil
}

// Close stops the health refresher and disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	close(s.stop)
	s.wg.Wait()
	return s.client.Disconnect(ctx)
}

// Health returns the cached connectivity view. Never blocks.
func (s *Store) Health() models.DatabaseHealth {
	s.healthMu.RLock()
	defer s.healthMu.RUnlock()
	return s.health
}

func (s *Store) healthLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(healthRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.refreshHealth(context.Background())
		case <-s.stop:
			return
		}
	}
}

func (s *Store) refreshHealth(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	health := models.DatabaseHealth{Models: modelCount}
	if err := s.client.Ping(pingCtx, readpref.Primary()); err != nil {
		health.State = stateDisconnected
		s.log.Writef("Store health ping failed: %v", err)
	} else {
		health.Connected = true
		health.State = stateConnected
		if names, err := s.db.ListCollectionNames(pingCtx, bson.M{}); err == nil {
			health.Collections = len(names)
		}
	}

	s.healthMu.Lock()
	// Keep the last known collection count when a refresh fails.
	if health.Collections == 0 && !health.Connected {
		health.Collections = s.health.Collections
	}
	s.health = health
	s.healthMu.Unlock()
}
