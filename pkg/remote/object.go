package remote

import (
	"context"
	"time"

	"github.com/aretw0/qpilot/pkg/domain"
)

// Object is implemented by every remote object variant. AsObject exposes
// the embedded base regardless of the concrete type.
type Object interface {
	AsObject() *ObjectBase
}

// ObjectBase is the client-side handle of one remote object. The
// descriptor fields are a snapshot taken when the object was looked up;
// treat them as read-only. Live state goes through Props.
type ObjectBase struct {
	ID      uint64   `mapstructure:"identity"`
	Path    string   `mapstructure:"path"`
	Classes []string `mapstructure:"classes"`

	// Extra retains every descriptor field the probe sent beyond the ones
	// above, so probe upgrades never lose data on this side.
	Extra map[string]any `mapstructure:",remain"`

	session *Session
	props   *Properties
}

// AsObject implements Object.
func (o *ObjectBase) AsObject() *ObjectBase { return o }

// Session returns the session the object was looked up through.
func (o *ObjectBase) Session() *Session { return o.session }

// Props returns the live property view of the object.
func (o *ObjectBase) Props() *Properties {
	if o.props == nil {
		o.props = &Properties{object: o}
	}
	return o.props
}

// Send issues a command carrying the object's identity plus args.
func (o *ObjectBase) Send(ctx context.Context, action string, args map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(args)+1)
	merged[domain.FieldIdentity] = o.ID
	for k, v := range args {
		merged[k] = v
	}
	return o.session.channel.Send(ctx, action, merged)
}

// Properties reads all property values in one round trip.
func (o *ObjectBase) Properties(ctx context.Context) (map[string]any, error) {
	return o.Props().All(ctx)
}

// Property reads a single property value.
func (o *ObjectBase) Property(ctx context.Context, name string) (any, error) {
	return o.Props().Get(ctx, name)
}

// SetProperty writes a single property value.
func (o *ObjectBase) SetProperty(ctx context.Context, name string, value any) error {
	return o.Props().Set(ctx, name, value)
}

// SetProperties writes several property values in one round trip.
func (o *ObjectBase) SetProperties(ctx context.Context, props map[string]any) error {
	return o.Props().SetMany(ctx, props)
}

// WaitForProperties polls until every expected property matches, returning
// false when timeout elapses first. Remote failures abort the poll.
func (o *ObjectBase) WaitForProperties(ctx context.Context, expected map[string]any, timeout, interval time.Duration) (bool, error) {
	return o.Props().WaitFor(ctx, expected, timeout, interval)
}

// CallSlot invokes a slot or invokable method on the object and returns
// whatever the probe reports as its result.
func (o *ObjectBase) CallSlot(ctx context.Context, slot string, params map[string]any) (any, error) {
	if params == nil {
		params = map[string]any{}
	}
	reply, err := o.Send(ctx, "call_slot", map[string]any{
		"slotName": slot,
		"params":   params,
	})
	if err != nil {
		return nil, err
	}
	return reply["resultSlot"], nil
}
