// Package historian drains the Redis action queue into postgres so finished
// games can be replayed and audited. It batches inserts and marks games
// abandoned after prolonged inactivity.
package historian

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/Nyaru01/skyjo/internal/cache"
	"github.com/Nyaru01/skyjo/internal/database"
)

// Service consumes queued game actions and persists them in batches.
type Service struct {
	batchSize  int
	flushDelay time.Duration
	inactivity time.Duration

	// lastActivity tracks the latest queued action per game for the
	// abandonment sweep. map[uuid.UUID]time.Time.
	lastActivity sync.Map

	batchMu  sync.Mutex
	batch    []cache.GameActionRecord
	ctx      context.Context
	cancelFn context.CancelFunc
	logger   *logrus.Logger
}

// Config tunes the historian. Zero values fall back to defaults.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	Inactivity    time.Duration
}

// NewService constructs a Service. Redis and postgres connections are
// expected to be established by the caller before Run.
func NewService(cfg Config, logger *logrus.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 500 * time.Millisecond
	}
	if cfg.Inactivity <= 0 {
		cfg.Inactivity = 10 * time.Minute
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		batchSize:  cfg.BatchSize,
		flushDelay: cfg.FlushInterval,
		inactivity: cfg.Inactivity,
		batch:      make([]cache.GameActionRecord, 0, cfg.BatchSize),
		ctx:        ctx,
		cancelFn:   cancel,
		logger:     logger,
	}
}

// Run starts the consume and abandonment loops and blocks until Stop.
func (s *Service) Run() {
	go s.consumeLoop()
	go s.inactivityLoop()

	s.logger.Info("historian service started")
	<-s.ctx.Done()
	s.flushBatch()
	s.logger.Info("historian service shut down")
}

// Stop terminates the service, flushing any buffered actions.
func (s *Service) Stop() {
	s.cancelFn()
}

// consumeLoop pops queued actions and accumulates them; a ticker flushes
// partial batches so records never sit in memory for long.
func (s *Service) consumeLoop() {
	ticker := time.NewTicker(s.flushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.flushBatch()
		default:
			rec, err := cache.PopGameAction(s.ctx, 3*time.Second)
			if err != nil {
				if s.ctx.Err() != nil {
					return
				}
				s.logger.Errorf("historian pop: %v", err)
				continue
			}
			if rec == nil {
				continue
			}
			s.lastActivity.Store(rec.GameID, time.Now())
			s.append(*rec)
		}
	}
}

func (s *Service) append(rec cache.GameActionRecord) {
	s.batchMu.Lock()
	s.batch = append(s.batch, rec)
	full := len(s.batch) >= s.batchSize
	s.batchMu.Unlock()
	if full {
		s.flushBatch()
	}
}

// flushBatch writes the buffered actions in one transaction.
func (s *Service) flushBatch() {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	batch := make([]cache.GameActionRecord, len(s.batch))
	copy(batch, s.batch)
	s.batch = s.batch[:0]
	s.batchMu.Unlock()

	ctx := context.Background()
	err := pgx.BeginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batch {
			if err := insertActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert action %d of game %s: %w", rec.ActionIndex, rec.GameID, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Errorf("historian flush: %v", err)
		return
	}
	s.logger.Debugf("flushed %d actions to db", len(batch))
}

// inactivityLoop marks games abandoned when their action stream goes quiet.
func (s *Service) inactivityLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			s.lastActivity.Range(func(key, val interface{}) bool {
				gameID, ok1 := key.(uuid.UUID)
				last, ok2 := val.(time.Time)
				if ok1 && ok2 && now.Sub(last) > s.inactivity {
					s.markAbandoned(gameID)
					s.lastActivity.Delete(gameID)
				}
				return true
			})
		}
	}
}

func (s *Service) markAbandoned(gameID uuid.UUID) {
	ctx := context.Background()
	err := pgx.BeginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE games
			SET status = 'abandoned', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		_, e := tx.Exec(ctx, q, gameID)
		return e
	})
	if err != nil {
		s.logger.Errorf("failed to mark game %v abandoned: %v", gameID, err)
		return
	}
	s.logger.Infof("marked game %v abandoned due to inactivity", gameID)
}

// insertActionTx upserts the game row and appends one action record. A
// round-end action also closes out the game row.
func insertActionTx(ctx context.Context, tx pgx.Tx, rec cache.GameActionRecord) error {
	upsertGame := `
		INSERT INTO games (id, status, start_time)
		VALUES ($1, 'in_progress', NOW())
		ON CONFLICT (id)
		DO UPDATE SET status = games.status
	`
	if _, err := tx.Exec(ctx, upsertGame, rec.GameID); err != nil {
		return err
	}

	payload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return err
	}
	insertAction := `
		INSERT INTO game_actions (
			game_id, action_index, actor_user_id, action_type, action_payload
		) VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insertAction,
		rec.GameID, rec.ActionIndex, rec.ActorUserID, rec.ActionType, payload,
	); err != nil {
		return err
	}

	if rec.ActionType == "game_round_end" {
		finalize := `
			UPDATE games
			SET status = 'completed', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		if _, err := tx.Exec(ctx, finalize, rec.GameID); err != nil {
			return err
		}
	}
	return nil
}
