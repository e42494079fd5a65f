// internal/candidatures/storage/registry.go
package storage

import (
	"context"

	"careers-backend/internal/common/errors"
	"careers-backend/internal/models"
)

const (
	tableEmploi    = "candidatures_emploi"
	tableStage     = "candidatures_stage"
	tableSpontanee = "candidatures_spontanees"
)

// partitionTable is the single authority for resolving a wire source to its
// backing table. Every caller that needs the mapping goes through it; the
// mapping is never restated elsewhere. Note that "pfe" rows live in the
// emploi partition: PFE is a resolved source, not a table of its own.
var partitionTable = map[models.ApplicationSource]string{
	models.SourceJobOpening:  tableEmploi,
	models.SourcePFE:         tableEmploi,
	models.SourceInternship:  tableStage,
	models.SourceSpontaneous: tableSpontanee,
}

// TableFor resolves a source to its backing table name.
func TableFor(source models.ApplicationSource) (string, bool) {
	table, ok := partitionTable[source]
	return table, ok
}

// Partition is one storage partition holding one category of raw application
// rows. IDs are auto-increment and local to the partition.
type Partition interface {
	// Source is the partition's default intake channel, used when a row has
	// no opening to resolve a more specific one from.
	Source() models.ApplicationSource

	Create(ctx context.Context, row models.RawApplication) (int64, error)
	Get(ctx context.Context, id int64) (models.RawApplication, error)
	List(ctx context.Context) ([]models.RawApplication, error)

	// UpdateStatus applies `statut = next` only if the row's current status
	// still equals expected. The boolean reports whether the conditional
	// update applied.
	UpdateStatus(ctx context.Context, id int64, expected, next models.LifecycleStatus) (bool, error)
}

// Registry resolves sources to partitions for the lifecycle controller and
// the aggregation service.
type Registry struct {
	byTable map[string]Partition
	all     []Partition
}

func NewRegistry(emploi, stage, spontanee Partition) *Registry {
	return &Registry{
		byTable: map[string]Partition{
			tableEmploi:    emploi,
			tableStage:     stage,
			tableSpontanee: spontanee,
		},
		all: []Partition{emploi, stage, spontanee},
	}
}

// Partition resolves a source to its backing partition.
func (r *Registry) Partition(source models.ApplicationSource) (Partition, error) {
	table, ok := partitionTable[source]
	if !ok {
		return nil, errors.NewValidationError("unknown application source: " + string(source))
	}
	return r.byTable[table], nil
}

// All returns every partition, one entry per physical table.
func (r *Registry) All() []Partition {
	return r.all
}
