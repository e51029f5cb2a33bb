package dashboard

import (
	"errors"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
)

// Kind classifies a failed lookup for display.
type Kind int

const (
	// KindSystem is a hard failure: network, timeout, upstream or server error.
	KindSystem Kind = iota
	// KindNotFound is informational: the address resolved to no property.
	KindNotFound
	// KindValidation means the address was rejected before any lookup.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "system"
	}
}

// State is the result of one lookup as seen by the dashboard: Pending, Failed or Ready.
type State interface {
	isState()
}

// Pending means a lookup is in flight.
type Pending struct {
	Address string
}

// Failed carries the single error alert to show.
type Failed struct {
	Kind    Kind
	Message string
}

// Ready carries a fully aggregated record.
type Ready struct {
	Data *types.PropertyData
}

func (Pending) isState() {}
func (Failed) isState()  {}
func (Ready) isState()   {}

// FetchError is returned by Client for every failed lookup.
type FetchError struct {
	Kind       Kind
	StatusCode int
	Message    string
}

func (e *FetchError) Error() string {
	return e.Message
}

// StateOf converts a lookup result into a State.
func StateOf(data *types.PropertyData, err error) State {
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return Failed{Kind: fe.Kind, Message: fe.Message}
		}
		return Failed{Kind: KindSystem, Message: err.Error()}
	}
	if data == nil {
		return Failed{Kind: KindNotFound, Message: MsgNotFound}
	}
	return Ready{Data: data}
}
