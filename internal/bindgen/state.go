package bindgen

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StateFilename is the per-run generation report written into the output
// directory. It is advisory: build scripts use it to tell whether generated
// sources changed since the last run.
const StateFilename = "ktbind_state.json"

type RunState struct {
	RunID       string                  `json:"run_id"`
	GeneratedAt time.Time               `json:"generated_at"`
	Components  map[string][]FileRecord `json:"components"`

	mu sync.Mutex
}

type FileRecord struct {
	Path   string `json:"path"`
	Sha256 string `json:"sha256"`
}

func NewRunState() *RunState {
	return &RunState{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Components:  make(map[string][]FileRecord),
	}
}

// Record stores the files written for one component. Safe for concurrent use
// by parallel dispatch workers.
func (s *RunState) Record(namespace string, files []WrittenFile) {
	records := make([]FileRecord, len(files))
	for i, f := range files {
		records[i] = FileRecord{Path: f.Path, Sha256: f.Sha256}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Components[namespace] = records
}

func (s *RunState) Save(outDir string) error {
	path := filepath.Join(outDir, StateFilename)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bufw := bufio.NewWriter(f)
	defer bufw.Flush()

	enc := json.NewEncoder(bufw)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func LoadRunState(outDir string) (*RunState, error) {
	f, err := os.Open(filepath.Join(outDir, StateFilename))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	state := new(RunState)
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(state); err != nil {
		return nil, err
	}
	return state, nil
}
