package canvas

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/behave/pkg/asset"
	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/value"
)

// AssetLookup resolves assets by shallow id.
type AssetLookup interface {
	Asset(id int) (*asset.Asset, bool)
}

// GroupLookup resolves groups by id.
type GroupLookup interface {
	Group(id int) (*asset.Group, bool)
}

// ConverterRegistry answers whether a Product of one data type may feed a
// Parameter of another.
type ConverterRegistry interface {
	CanConvert(from, to value.DataType) bool
}

// ContainerResolver answers questions about other containers of the same
// project. It backs BehaviourInstance nodes.
type ContainerResolver interface {
	// ContainerName returns the current name of the container.
	ContainerName(id string) (string, bool)
	// ContainerInterface returns the portals an instance of the container
	// exposes, one per portal proxy on its canvas.
	ContainerInterface(id string) ([]PortalSpec, bool)
	// CheckInstance returns an error if placing an instance of target inside
	// host would make host contain itself.
	CheckInstance(host, target string) error
}

// ScriptService provisions and deletes the server-side records behind
// BehaviourScript nodes.
type ScriptService interface {
	ProvisionScript(ctx context.Context) (int, error)
	DeleteScript(ctx context.Context, shallowID int) error
}

// Env is the set of capabilities a canvas is constructed with. Every field
// is optional: a nil lookup treats every reference as unknown, a nil
// converter registry allows no conversions, a nil resolver only refuses
// direct self instances, and a nil script service fails provisioning.
type Env struct {
	Assets     AssetLookup
	Groups     GroupLookup
	Converters ConverterRegistry
	Containers ContainerResolver
	Scripts    ScriptService
	Logger     *log.Logger
}

func (e Env) canConvert(from, to value.DataType) bool {
	return e.Converters != nil && e.Converters.CanConvert(from, to)
}

func (e Env) checkInstance(host, target string) error {
	if host == target {
		return errors.Wrap(errors.ErrCodeCyclicDependency, ErrCyclicInstance, "container %s cannot contain itself", host)
	}
	if e.Containers == nil {
		return nil
	}
	return e.Containers.CheckInstance(host, target)
}

func (e Env) provisionScript(ctx context.Context) (int, error) {
	if e.Scripts == nil {
		return 0, errors.New(errors.ErrCodeScriptProvision, "no script service configured")
	}
	id, err := e.Scripts.ProvisionScript(ctx)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeScriptProvision, err, "provision script")
	}
	return id, nil
}
