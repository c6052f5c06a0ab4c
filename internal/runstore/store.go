// Package runstore keeps finished matching runs in an embedded bbolt file so
// two runs can be compared later without keeping the result files around.
// Full result sets live in the "runs" bucket, small summaries for listing in
// "summaries"; both are JSON keyed by run id.
package runstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"listing-matcher/internal/match/model"
)

var (
	bucketRuns      = []byte("runs")
	bucketSummaries = []byte("summaries")
)

// Summary is what List returns: everything but the result set.
type Summary struct {
	ID        string      `json:"run_id"`
	CreatedAt time.Time   `json:"created_at"`
	Stats     model.Stats `json:"stats"`
}

type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the store at path, creating parent directories.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("runstore dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRuns); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketSummaries)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("runstore init: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores res and returns its id. A missing RunID is generated and
// written back into res.
func (s *Store) Save(res *model.Result) (string, error) {
	if res == nil {
		return "", fmt.Errorf("nil result")
	}
	if res.RunID == "" {
		res.RunID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}

	runJSON, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("marshal run: %w", err)
	}
	sumJSON, err := json.Marshal(Summary{ID: res.RunID, CreatedAt: res.CreatedAt, Stats: res.Stats})
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}

	key := []byte(res.RunID)
	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketRuns).Put(key, runJSON); err != nil {
			return err
		}
		return tx.Bucket(bucketSummaries).Put(key, sumJSON)
	})
	if err != nil {
		return "", fmt.Errorf("save run %s: %w", res.RunID, err)
	}
	return res.RunID, nil
}

// Load returns the stored run; unknown id gives model.ErrRunNotFound.
func (s *Store) Load(id string) (model.Result, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRuns).Get([]byte(id))
		if v != nil {
			// bbolt memory is only valid inside the tx
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return model.Result{}, err
	}
	if data == nil {
		return model.Result{}, fmt.Errorf("%w: %s", model.ErrRunNotFound, id)
	}
	var res model.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return model.Result{}, fmt.Errorf("unmarshal run %s: %w", id, err)
	}
	return res, nil
}

// List returns run summaries, oldest first.
func (s *Store) List() ([]Summary, error) {
	var out []Summary
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSummaries).ForEach(func(k, v []byte) error {
			var sm Summary
			if err := json.Unmarshal(v, &sm); err != nil {
				return fmt.Errorf("unmarshal summary %s: %w", k, err)
			}
			out = append(out, sm)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
