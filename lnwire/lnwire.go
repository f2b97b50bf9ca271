package lnwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// ChannelID is the unique identifier for a channel, used to tag every
// message exchanged while negotiating or operating it.
type ChannelID [32]byte

// ErrUnknownElementType is returned when readElement/writeElement are asked
// to handle a type they don't know how to serialize.
type ErrUnknownElementType struct {
	t interface{}
}

func (e *ErrUnknownElementType) Error() string {
	return fmt.Sprintf("unknown element type: %T", e.t)
}

// readElement reads a single wire element from r into element, dispatching
// on its concrete type.
func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *ChannelID:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}

	case *uint16:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = binary.BigEndian.Uint16(b[:])

	case *uint32:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = binary.BigEndian.Uint32(b[:])

	case *uint64:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = binary.BigEndian.Uint64(b[:])

	case **chainhash.Hash:
		var present [1]byte
		if _, err := io.ReadFull(r, present[:]); err != nil {
			return err
		}
		if present[0] == 0 {
			*e = nil
			return nil
		}
		var h chainhash.Hash
		if _, err := io.ReadFull(r, h[:]); err != nil {
			return err
		}
		*e = &h

	case *[]byte:
		var l uint16
		if err := readElement(r, &l); err != nil {
			return err
		}
		buf := make([]byte, l)
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		*e = buf

	case **wire.MsgTx:
		var l uint16
		if err := readElement(r, &l); err != nil {
			return err
		}
		if l == 0 {
			*e = nil
			return nil
		}
		lr := io.LimitReader(r, int64(l))
		tx := &wire.MsgTx{}
		if err := tx.Deserialize(lr); err != nil {
			return err
		}
		*e = tx

	default:
		return &ErrUnknownElementType{element}
	}

	return nil
}

// readElements reads each of elements in order using readElement.
func readElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		if err := readElement(r, element); err != nil {
			return err
		}
	}
	return nil
}

// writeElement writes a single wire element to w, dispatching on its
// concrete type.
func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case ChannelID:
		if _, err := w.Write(e[:]); err != nil {
			return err
		}

	case uint16:
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], e)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}

	case uint32:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], e)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}

	case uint64:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], e)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}

	case *chainhash.Hash:
		if e == nil {
			_, err := w.Write([]byte{0})
			return err
		}
		if _, err := w.Write([]byte{1}); err != nil {
			return err
		}
		if _, err := w.Write(e[:]); err != nil {
			return err
		}

	case []byte:
		if len(e) > 1<<16-1 {
			return fmt.Errorf("byte slice of length %d exceeds "+
				"max length of %d", len(e), 1<<16-1)
		}
		if err := writeElement(w, uint16(len(e))); err != nil {
			return err
		}
		if _, err := w.Write(e); err != nil {
			return err
		}

	case *wire.MsgTx:
		if e == nil {
			return writeElement(w, uint16(0))
		}
		var buf bytes.Buffer
		if err := e.Serialize(&buf); err != nil {
			return err
		}
		if err := writeElement(w, uint16(buf.Len())); err != nil {
			return err
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}

	default:
		return &ErrUnknownElementType{element}
	}

	return nil
}

// writeElements writes each of elements in order using writeElement.
func writeElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		if err := writeElement(w, element); err != nil {
			return err
		}
	}
	return nil
}
