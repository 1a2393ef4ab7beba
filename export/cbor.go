package export

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/ksm-disasm/errors"
	"github.com/wippyai/ksm-disasm/script"
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("export: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// MarshalDocument serializes a Document to canonical CBOR.
func MarshalDocument(d *Document) ([]byte, error) {
	return encMode.Marshal(d)
}

// UnmarshalDocument deserializes a Document from CBOR bytes.
func UnmarshalDocument(data []byte) (*Document, error) {
	var d Document
	if err := cbor.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "unmarshal document")
	}
	return &d, nil
}

// WriteCBOR encodes the decoded program p to w.
func WriteCBOR(w io.Writer, p *script.Program) error {
	data, err := MarshalDocument(NewDocument(p))
	if err != nil {
		return errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "marshal document")
	}
	_, err = w.Write(data)
	return err
}
