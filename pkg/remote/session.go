package remote

import (
	"fmt"
	"sort"

	"github.com/aretw0/qpilot/pkg/dispatch"
	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/items"
	"github.com/aretw0/qpilot/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Session owns one channel and the registries that type everything coming
// back over it. Registries are filled while the client is assembled and
// read-only afterwards.
type Session struct {
	channel ports.Channel
	aliases map[string]string

	objects       *dispatch.Registry[Object]
	modelItems    *dispatch.Registry[*items.ModelItem]
	graphicsItems *dispatch.Registry[*items.GraphicsItem]
}

// Option configures a Session.
type Option func(*Session)

// WithAliases merges friendly name to path mappings into the session.
func WithAliases(aliases map[string]string) Option {
	return func(s *Session) {
		for name, path := range aliases {
			s.aliases[name] = path
		}
	}
}

// NewSession creates a session on top of an open channel.
func NewSession(ch ports.Channel, opts ...Option) *Session {
	s := &Session{
		channel:       ch,
		aliases:       make(map[string]string),
		objects:       dispatch.New[Object](),
		modelItems:    dispatch.New[*items.ModelItem](),
		graphicsItems: dispatch.New[*items.GraphicsItem](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Channel returns the command link of the session.
func (s *Session) Channel() ports.Channel { return s.channel }

// ObjectRegistry returns the registry typing remote objects.
func (s *Session) ObjectRegistry() *dispatch.Registry[Object] { return s.objects }

// ModelItemRegistry returns the registry typing model items.
func (s *Session) ModelItemRegistry() *dispatch.Registry[*items.ModelItem] { return s.modelItems }

// GraphicsItemRegistry returns the registry typing graphics items.
func (s *Session) GraphicsItemRegistry() *dispatch.Registry[*items.GraphicsItem] {
	return s.graphicsItems
}

// ResolveAlias maps a friendly name to the full object path it stands for.
func (s *Session) ResolveAlias(name string) (string, error) {
	path, ok := s.aliases[name]
	if !ok {
		return "", &domain.NotFoundError{
			Entity:     "alias",
			Value:      name,
			Candidates: aliasNames(s.aliases),
		}
	}
	return path, nil
}

func aliasNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bind decodes a descriptor into o and attaches this session to it.
// Specializations embed ObjectBase and call Bind on the embedded field.
func (s *Session) Bind(o *ObjectBase, d domain.Descriptor) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           o,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("building object decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(d)); err != nil {
		return fmt.Errorf("decoding object %q: %w", d.Path(), err)
	}
	o.session = s
	return nil
}

// NewObjectBase decodes a descriptor into the plain base shape, bypassing
// the registry.
func (s *Session) NewObjectBase(d domain.Descriptor) (*ObjectBase, error) {
	o := &ObjectBase{}
	if err := s.Bind(o, d); err != nil {
		return nil, err
	}
	return o, nil
}

// NewObject types a descriptor through the object registry. Chains with no
// registered class produce a plain *ObjectBase.
func (s *Session) NewObject(d domain.Descriptor) (Object, error) {
	return s.objects.Resolve(d, "", func(dd domain.Descriptor) (Object, error) {
		return s.NewObjectBase(dd)
	})
}

// Close closes the underlying channel.
func (s *Session) Close() error {
	return s.channel.Close()
}
