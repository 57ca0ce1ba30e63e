package session

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/powerauth-go/mobile-sdk/pkg/tlv"
)

// CurrentSerializationVersion is the only version byte this build
// understands. DeserializeState rejects any other value outright.
const CurrentSerializationVersion = 1

// Serialized state context tags, written inside one top-level TLV
// structure. tlv.Reader/tlv.Writer give forward compatibility for free:
// an unrecognized tag inside the structure is simply skipped.
const (
	tagState             = 1
	tagActivationID      = 2
	tagActivationIDShort = 3
	tagServerPublicKey   = 4
	tagTransportKey      = 5
	tagCounter           = 6
	tagEnvelopePossession = 7
	tagEnvelopeKnowledge  = 8
	tagEnvelopeBiometry   = 9
	tagDevicePrivateKeyEnv = 10
)

// SerializeState produces a versioned opaque blob capturing the current
// Empty, Active, or Broken state. Pending is never persisted: an
// interrupted activation handshake is restarted from scratch rather than
// resumed across a process restart.
func (s *Session) SerializeState() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePending {
		return nil, ErrInvalidActivationState
	}

	var buf bytes.Buffer
	buf.WriteByte(CurrentSerializationVersion)

	w := tlv.NewWriter(&buf)
	if err := w.StartStructure(tlv.Anonymous()); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if err := w.PutUint(tlv.ContextTag(tagState), uint64(s.state)); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	if s.state == StateActive {
		a := s.active
		if err := w.PutString(tlv.ContextTag(tagActivationID), a.activationID); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		if err := w.PutString(tlv.ContextTag(tagActivationIDShort), a.activationIDShort); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		if err := w.PutBytes(tlv.ContextTag(tagServerPublicKey), a.serverPublicKey); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		if err := w.PutBytes(tlv.ContextTag(tagTransportKey), a.transportKey); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		if err := w.PutUint(tlv.ContextTag(tagCounter), a.counter); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		if env, ok := a.envelopes[Possession]; ok {
			if err := w.PutBytes(tlv.ContextTag(tagEnvelopePossession), env); err != nil {
				return nil, fmt.Errorf("session: %w", err)
			}
		}
		if env, ok := a.envelopes[Knowledge]; ok {
			if err := w.PutBytes(tlv.ContextTag(tagEnvelopeKnowledge), env); err != nil {
				return nil, fmt.Errorf("session: %w", err)
			}
		}
		if env, ok := a.envelopes[Biometry]; ok {
			if err := w.PutBytes(tlv.ContextTag(tagEnvelopeBiometry), env); err != nil {
				return nil, fmt.Errorf("session: %w", err)
			}
		}
		if err := w.PutBytes(tlv.ContextTag(tagDevicePrivateKeyEnv), a.devicePrivateKeyEnvelope); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	if err := w.EndContainer(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeState replaces the Session's current state atomically from a
// blob produced by SerializeState. A blob whose version byte is not
// CurrentSerializationVersion moves the Session to Broken and returns
// ErrUnsupportedVersion. On any other error the Session is left entirely
// unmodified — parsing happens into a scratch structure first, and only a
// fully-consistent result is swapped in.
func (s *Session) DeserializeState(data []byte) error {
	parsed, err := parseSerializedState(data)
	if err != nil {
		if errors.Is(err, ErrUnsupportedVersion) {
			s.mu.Lock()
			s.breakLocked()
			s.mu.Unlock()
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.derived.zeroize()
	}
	s.pending = nil
	s.active.zeroize()
	s.active = nil
	s.state = parsed.state
	s.active = parsed.active
	if s.log != nil {
		s.log.Infof("deserialized state, now %s", s.state)
	}
	return nil
}

type parsedState struct {
	state  State
	active *activeState
}

func parseSerializedState(data []byte) (*parsedState, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
	}
	if data[0] != CurrentSerializationVersion {
		return nil, ErrUnsupportedVersion
	}

	r := tlv.NewReader(bytes.NewReader(data[1:]))
	if err := r.Next(); err != nil {
		return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
	}
	if r.Type() != tlv.ElementTypeStruct {
		return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
	}
	if err := r.EnterContainer(); err != nil {
		return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
	}

	fields := map[int][]byte{}
	var stateValue uint64
	haveState := false
	for {
		if err := r.Next(); err != nil {
			return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
		}
		if r.IsEndOfContainer() {
			break
		}
		tagNum := int(r.Tag().TagNumber())
		switch tagNum {
		case tagState:
			v, err := r.Uint()
			if err != nil {
				return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
			}
			stateValue = v
			haveState = true
		case tagActivationID, tagActivationIDShort:
			s, err := r.String()
			if err != nil {
				return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
			}
			fields[tagNum] = []byte(s)
		case tagCounter:
			v, err := r.Uint()
			if err != nil {
				return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
			}
			var counterBytes [8]byte
			for i := 0; i < 8; i++ {
				counterBytes[7-i] = byte(v >> (8 * i))
			}
			fields[tagNum] = counterBytes[:]
		case tagServerPublicKey, tagTransportKey, tagEnvelopePossession,
			tagEnvelopeKnowledge, tagEnvelopeBiometry, tagDevicePrivateKeyEnv:
			b, err := r.Bytes()
			if err != nil {
				return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
			}
			fields[tagNum] = b
		default:
			if err := r.Skip(); err != nil {
				return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
			}
		}
	}
	if err := r.ExitContainer(); err != nil {
		return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
	}
	if !haveState {
		return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
	}

	st := State(stateValue)
	if !st.IsValid() {
		return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
	}

	result := &parsedState{state: st}

	switch st {
	case StateEmpty, StateBroken:
		if _, hasActivation := fields[tagActivationID]; hasActivation {
			return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
		}
	case StateActive:
		activationID, ok1 := fields[tagActivationID]
		idShort, ok2 := fields[tagActivationIDShort]
		serverPub, ok3 := fields[tagServerPublicKey]
		transportKey, ok4 := fields[tagTransportKey]
		counterBytes, ok5 := fields[tagCounter]
		deviceKeyEnv, ok6 := fields[tagDevicePrivateKeyEnv]
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || len(counterBytes) != 8 {
			return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
		}
		envelopes := make(map[Factor][]byte, 3)
		if env, ok := fields[tagEnvelopePossession]; ok {
			envelopes[Possession] = env
		}
		if env, ok := fields[tagEnvelopeKnowledge]; ok {
			envelopes[Knowledge] = env
		}
		if env, ok := fields[tagEnvelopeBiometry]; ok {
			envelopes[Biometry] = env
		}
		if _, hasPossession := envelopes[Possession]; !hasPossession {
			return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
		}
		var counter uint64
		for _, b := range counterBytes {
			counter = (counter << 8) | uint64(b)
		}
		result.active = &activeState{
			activationID:             string(activationID),
			activationIDShort:        string(idShort),
			serverPublicKey:          serverPub,
			transportKey:             transportKey,
			envelopes:                envelopes,
			counter:                  counter,
			devicePrivateKeyEnvelope: deviceKeyEnv,
		}
	}

	return result, nil
}
