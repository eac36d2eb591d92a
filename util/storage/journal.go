package storage

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/cclibraries/rdmflow/models"
)

const RUN_BUCKET = "runs"

// PipelineJournal is a bolt database, a single-file key-value store,
// that records the state of each pipeline run keyed by run id. The
// pipeline itself is stateless across restarts; the journal exists so
// an operator can find the task id of an in-flight transfer and
// resume polling it after a process restart, and so there is a local
// audit trail of what was moved and when.
type PipelineJournal struct {
	db       *bolt.DB
	filePath string
}

// NewPipelineJournal opens the journal, creating the DB file if it
// doesn't already exist.
func NewPipelineJournal(filePath string) (journal *PipelineJournal, err error) {
	db, err := bolt.Open(filePath, 0644, nil)
	if err == nil {
		journal = &PipelineJournal{
			db:       db,
			filePath: filePath,
		}
		err = journal.initBuckets()
	}
	return journal, err
}

func (journal *PipelineJournal) initBuckets() error {
	return journal.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(RUN_BUCKET))
		if err != nil {
			return fmt.Errorf("Error creating run bucket: %s", err)
		}
		return nil
	})
}

// FilePath returns the path to the journal's DB file.
func (journal *PipelineJournal) FilePath() string {
	return journal.filePath
}

// Close closes the underlying bolt database.
func (journal *PipelineJournal) Close() {
	journal.db.Close()
}

// SaveRun writes the state of one pipeline run, keyed by its run id.
// Saving the same run id again overwrites the earlier record, which
// is what we want: the journal holds each run's latest known state.
func (journal *PipelineJournal) SaveRun(state *models.PipelineState) error {
	var byteSlice []byte
	buf := bytes.NewBuffer(byteSlice)
	encoder := gob.NewEncoder(buf)
	err := encoder.Encode(state)
	if err != nil {
		return err
	}
	return journal.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(RUN_BUCKET))
		return bucket.Put([]byte(state.RunId), buf.Bytes())
	})
}

// GetRun returns the recorded state for the given run id. If the run
// id is not found, this returns nil and no error.
func (journal *PipelineJournal) GetRun(runId string) (*models.PipelineState, error) {
	var err error
	state := &models.PipelineState{}
	err = journal.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(RUN_BUCKET))
		value := bucket.Get([]byte(runId))
		if len(value) > 0 {
			buf := bytes.NewBuffer(value)
			decoder := gob.NewDecoder(buf)
			err = decoder.Decode(state)
		} else {
			state = nil
		}
		return err
	})
	return state, err
}

// RunIds returns the ids of every recorded run.
func (journal *PipelineJournal) RunIds() []string {
	keys := make([]string, 0)
	journal.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(RUN_BUCKET))
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys
}

// UnfinishedRuns returns every recorded run that has not reached the
// end of the pipeline. These are the runs worth resuming after a
// restart: they may have a transfer task still in flight.
func (journal *PipelineJournal) UnfinishedRuns() ([]*models.PipelineState, error) {
	states := make([]*models.PipelineState, 0)
	err := journal.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(RUN_BUCKET))
		return bucket.ForEach(func(k, v []byte) error {
			state := &models.PipelineState{}
			buf := bytes.NewBuffer(v)
			decoder := gob.NewDecoder(buf)
			decodeErr := decoder.Decode(state)
			if decodeErr != nil {
				return fmt.Errorf("Cannot decode journal record %s: %v",
					string(k), decodeErr)
			}
			if !state.Finished() {
				states = append(states, state)
			}
			return nil
		})
	})
	return states, err
}
