package farm

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrResourceUnavailable is returned when a farm's soil/weather text cannot be read.
var ErrResourceUnavailable = errors.New("farm resource unavailable")

// Context is the farm information handed to the model for one request.
// The zero value means "no farm context".
type Context struct {
	FarmID      ID
	Name        string
	Location    string
	Acreage     float64
	Coordinates []string
	Equipment   []EquipmentOption
	CropHistory []CropYear
	SoilWeather string
}

// IsEmpty reports whether c carries no farm data.
func (c Context) IsEmpty() bool {
	return c.FarmID == 0
}

// Assembler builds request contexts from the catalog and the soil/weather
// text files under a data directory.
type Assembler struct {
	catalog *Catalog
	fs      afero.Fs
	dataDir string
	log     *zap.Logger
}

// NewAssembler creates an Assembler. A nil fs means the OS filesystem.
func NewAssembler(catalog *Catalog, fs afero.Fs, dataDir string, log *zap.Logger) *Assembler {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{
		catalog: catalog,
		fs:      fs,
		dataDir: dataDir,
		log:     log.Named("assembler"),
	}
}

// Catalog returns the profile catalog backing the assembler.
func (a *Assembler) Catalog() *Catalog {
	return a.catalog
}

// Assemble returns the context for id. Unknown ids yield an empty context
// and no error. The soil/weather text is read on every call; a read failure
// is returned wrapped in ErrResourceUnavailable.
func (a *Assembler) Assemble(id ID) (Context, error) {
	p, ok := a.catalog.Profile(id)
	if !ok {
		a.log.Debug("Unknown farm id, continuing without farm context", zap.Int("farm_id", int(id)))
		return Context{}, nil
	}

	path := filepath.Join(a.dataDir, p.SoilWeatherFile)
	text, err := afero.ReadFile(a.fs, path)
	if err != nil {
		a.log.Error("Failed to read soil/weather resource", zap.Int("farm_id", int(id)), zap.String("path", path), zap.Error(err))
		return Context{}, fmt.Errorf("%w: farm %d: %v", ErrResourceUnavailable, id, err)
	}

	return Context{
		FarmID:      p.ID,
		Name:        p.Name,
		Location:    p.Location,
		Acreage:     p.Acreage,
		Coordinates: p.Coordinates,
		Equipment:   p.Equipment,
		CropHistory: p.CropHistory,
		SoilWeather: string(text),
	}, nil
}
