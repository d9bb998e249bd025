package status

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ekvall/seqdeliver/internal/domain/delivery"
)

// Record is the stored delivery state of one sample.
type Record struct {
	// Status is the current lifecycle state.
	Status delivery.Status `yaml:"status"`
	// DeliveryID is the UUID of the staging run that last touched the sample.
	DeliveryID string `yaml:"delivery_id,omitempty"`
	// UpdatedAt is when the status last changed, UTC.
	UpdatedAt time.Time `yaml:"updated_at"`
}

// projectFile is the on-disk YAML document for one project.
type projectFile struct {
	Project string            `yaml:"project"`
	Samples map[string]Record `yaml:"samples"`
}

// FileRepository persists per-sample delivery statuses to one YAML file per
// project. Writes are serialized with a mutex; delivery runs process one
// project at a time, so cross-process locking lives with the staging lock,
// not here.
type FileRepository struct {
	// dir is the directory holding status files and acknowledgements.
	dir string
	// mu protects concurrent access to the status files.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when no status has been recorded yet.
	ErrNotFound = errors.New("delivery status not found")
	// ErrIllegalTransition is returned for lifecycle steps the model forbids.
	ErrIllegalTransition = errors.New("illegal delivery status transition")
)

const fileMode os.FileMode = 0o644

// NewFileRepository creates a repository rooted at the provided directory.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: filepath.Clean(dir)}
}

// StatusPath returns the status file path for a project.
func (r *FileRepository) StatusPath(projectID string) string {
	return filepath.Join(r.dir, projectID+"_delivery_status.yaml")
}

// AckPath returns the acknowledgement file path for a sample.
func (r *FileRepository) AckPath(sampleID string) string {
	return filepath.Join(r.dir, sampleID+"_delivered.ack")
}

// Load returns all recorded sample statuses for a project.
func (r *FileRepository) Load(_ context.Context, projectID string) (map[string]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read(projectID)
	if err != nil {
		return nil, err
	}

	return doc.Samples, nil
}

// Get returns the status record of one sample. Samples never written before
// report StatusNotDelivered rather than an error.
func (r *FileRepository) Get(_ context.Context, projectID, sampleID string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read(projectID)
	if errors.Is(err, ErrNotFound) {
		return Record{Status: delivery.StatusNotDelivered}, nil
	} else if err != nil {
		return Record{}, err
	}

	record, ok := doc.Samples[sampleID]
	if !ok {
		return Record{Status: delivery.StatusNotDelivered}, nil
	}

	return record, nil
}

// Set moves a sample to the next lifecycle state, enforcing the allowed
// transitions, and stamps the record with the delivery run ID.
func (r *FileRepository) Set(_ context.Context, projectID, sampleID string, next delivery.Status, deliveryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read(projectID)
	if errors.Is(err, ErrNotFound) {
		doc = &projectFile{Project: projectID, Samples: map[string]Record{}}
	} else if err != nil {
		return err
	}

	current := delivery.StatusNotDelivered
	if record, ok := doc.Samples[sampleID]; ok {
		current = record.Status
	}

	if !current.CanTransition(next) {
		return fmt.Errorf("%w: %s: %s -> %s", ErrIllegalTransition, sampleID, current, next)
	}

	doc.Samples[sampleID] = Record{
		Status:     next,
		DeliveryID: deliveryID,
		UpdatedAt:  time.Now().UTC(),
	}

	return r.write(projectID, doc)
}

// MarkDelivered records the DELIVERED state and writes the sample's
// acknowledgement file containing the timestamp and delivery run ID.
func (r *FileRepository) MarkDelivered(ctx context.Context, projectID, sampleID, deliveryID string) error {
	if err := r.Set(ctx, projectID, sampleID, delivery.StatusDelivered, deliveryID); err != nil {
		return err
	}

	ack := fmt.Sprintf("%s %s\n", delivery.Timestamp(), deliveryID)
	if err := os.WriteFile(r.AckPath(sampleID), []byte(ack), fileMode); err != nil {
		return fmt.Errorf("write delivery acknowledgement: %w", err)
	}

	return nil
}

func (r *FileRepository) read(projectID string) (*projectFile, error) {
	contents, err := os.ReadFile(r.StatusPath(projectID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read status file: %w", err)
	}

	var doc projectFile
	if err = yaml.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode status file: %w", err)
	}

	if doc.Samples == nil {
		doc.Samples = map[string]Record{}
	}

	return &doc, nil
}

func (r *FileRepository) write(projectID string, doc *projectFile) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode status file: %w", err)
	}

	if err = os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create status dir: %w", err)
	}

	if err = os.WriteFile(r.StatusPath(projectID), data, fileMode); err != nil {
		return fmt.Errorf("write status file: %w", err)
	}

	return nil
}
