package section

import (
	"fmt"

	"github.com/arloliu/xport/encoding"
	"github.com/arloliu/xport/endian"
	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
)

// namestr field offsets
const (
	nsType         = 0   // NTYPE  2 bytes
	nsHashFun      = 2   // NHFUN  2 bytes, always 0
	nsLength       = 4   // NLNG   2 bytes
	nsVarNum       = 6   // NVAR0  2 bytes
	nsName         = 8   // NNAME  8 bytes
	nsLabel        = 16  // NLABEL 40 bytes
	nsFormat       = 56  // NFORM  8 bytes
	nsFormatWidth  = 64  // NFL    2 bytes
	nsFormatDec    = 66  // NFD    2 bytes
	nsJustify      = 68  // NFJ    2 bytes
	nsFill         = 70  // NFILL  2 bytes
	nsInformat     = 72  // NIFORM 8 bytes
	nsInformatWid  = 80  // NIFL   2 bytes
	nsInformatDec  = 82  // NIFD   2 bytes
	nsPosition     = 84  // NPOS   4 bytes
	nsLongName     = 88  // V8 long name 32 bytes
	nsLabelLength  = 120 // V8 label length 2 bytes
	nsShortName    = 8
	nsShortLabel   = 40
	nsShortFormat  = 8
	nsLongNameSize = 32
)

// FormatField is the name, width and decimals of a format or informat.
type FormatField struct {
	Name     string
	Width    int
	Decimals int
}

// Namestr is the variable descriptor record of one column.
//
// Name, Label, Format and Informat hold the full text. The short fixed fields of the
// record carry a prefix; V8 keeps the full name in the long-name field and full labels
// and format names travel in the LABELV8/LABELV9 section.
type Namestr struct {
	Type     format.ColumnType
	Length   int
	VarNum   int
	Name     string
	Label    string
	Format   FormatField
	Informat FormatField
	Justify  format.Justification
	Position int

	// LabelLength is the V8 label length field as read from the file.
	LabelLength int
}

// NeedsLabelExtension reports whether the column needs a LABELV8/LABELV9 entry.
func (n *Namestr) NeedsLabelExtension(enc encoding.TextEncoder) bool {
	if len(n.Format.Name) > nsShortFormat || len(n.Informat.Name) > nsShortFormat {
		return true
	}
	l, err := enc.EncodedLen(n.Label)

	return err == nil && l > nsShortLabel
}

// NeedsFormatExtension reports whether the column needs the LABELV9 form.
func (n *Namestr) NeedsFormatExtension() bool {
	return len(n.Format.Name) > nsShortFormat || len(n.Informat.Name) > nsShortFormat
}

// Bytes serializes the namestr into a NamestrSize-byte record.
//
// Returns:
//   - []byte: Serialized namestr
//   - error: ErrNotEncodable if the label cannot be represented by enc
func (n *Namestr) Bytes(v format.Version, enc encoding.TextEncoder) ([]byte, error) {
	b := make([]byte, NamestrSize)
	engine := endian.GetTransportEngine()

	engine.PutUint16(b[nsType:], uint16(n.Type))
	engine.PutUint16(b[nsHashFun:], 0)
	engine.PutUint16(b[nsLength:], uint16(n.Length))
	engine.PutUint16(b[nsVarNum:], uint16(n.VarNum))
	copy(b[nsName:nsLabel], appendField(nil, n.Name, nsShortName))
	if _, err := enc.Put(b[nsLabel:nsFormat], n.Label); err != nil {
		return nil, err
	}
	copy(b[nsFormat:nsFormatWidth], appendField(nil, n.Format.Name, nsShortFormat))
	engine.PutUint16(b[nsFormatWidth:], uint16(n.Format.Width))
	engine.PutUint16(b[nsFormatDec:], uint16(n.Format.Decimals))
	engine.PutUint16(b[nsJustify:], uint16(n.Justify))
	engine.PutUint16(b[nsFill:], 0)
	copy(b[nsInformat:nsInformatWid], appendField(nil, n.Informat.Name, nsShortFormat))
	engine.PutUint16(b[nsInformatWid:], uint16(n.Informat.Width))
	engine.PutUint16(b[nsInformatDec:], uint16(n.Informat.Decimals))
	engine.PutUint32(b[nsPosition:], uint32(n.Position))

	if v == format.V8 {
		copy(b[nsLongName:nsLabelLength], appendField(nil, n.Name, nsLongNameSize))
		labelLen, err := enc.EncodedLen(n.Label)
		if err != nil {
			return nil, err
		}
		engine.PutUint16(b[nsLabelLength:], uint16(labelLen))
		encoding.PadBlank(b[nsLabelLength+2:])
	} else {
		encoding.PadBlank(b[nsLongName:])
	}

	return b, nil
}

// Parse parses a namestr of 140 or 136 bytes.
//
// Parameters:
//   - data: Namestr bytes
//   - v: Version of the file; V8 reads the long-name and label-length fields
//   - dec: Decoder for the label
//
// Returns:
//   - error: ErrInvalidNamestr for unknown types or impossible lengths
func (n *Namestr) Parse(data []byte, v format.Version, dec encoding.TextDecoder) error {
	if len(data) != NamestrSize && len(data) != NamestrSizeVAX {
		return errs.ErrInvalidRecordSize
	}

	engine := endian.GetTransportEngine()

	n.Type = format.ColumnType(engine.Uint16(data[nsType:]))
	if n.Type != format.Numeric && n.Type != format.Character {
		return fmt.Errorf("%w: variable type %d", errs.ErrInvalidNamestr, n.Type)
	}
	n.Length = int(engine.Uint16(data[nsLength:]))
	if n.Length == 0 || (n.Type == format.Numeric && (n.Length < 2 || n.Length > encoding.NumericWidth)) {
		return fmt.Errorf("%w: %s length %d", errs.ErrInvalidNamestr, n.Type, n.Length)
	}
	n.VarNum = int(engine.Uint16(data[nsVarNum:]))
	n.Name = field(data, nsName, nsShortName)
	n.Label = dec.String(data[nsLabel:nsFormat])
	n.Format = FormatField{
		Name:     field(data, nsFormat, nsShortFormat),
		Width:    int(engine.Uint16(data[nsFormatWidth:])),
		Decimals: int(engine.Uint16(data[nsFormatDec:])),
	}
	n.Justify = format.Justification(engine.Uint16(data[nsJustify:]))
	n.Informat = FormatField{
		Name:     field(data, nsInformat, nsShortFormat),
		Width:    int(engine.Uint16(data[nsInformatWid:])),
		Decimals: int(engine.Uint16(data[nsInformatDec:])),
	}
	n.Position = int(engine.Uint32(data[nsPosition:]))

	if v == format.V8 && len(data) == NamestrSize {
		if long := field(data, nsLongName, nsLongNameSize); long != "" {
			n.Name = long
		}
		n.LabelLength = int(engine.Uint16(data[nsLabelLength:]))
	}

	return nil
}

// EncodeNamestrs serializes all namestrs back to back and pads the block to a record boundary.
func EncodeNamestrs(namestrs []Namestr, v format.Version, enc encoding.TextEncoder) ([]byte, error) {
	size := int64(len(namestrs) * NamestrSize)
	b := make([]byte, 0, size+int64(PaddingLen(size)))

	for i := range namestrs {
		rec, err := namestrs[i].Bytes(v, enc)
		if err != nil {
			return nil, fmt.Errorf("namestr %d (%s): %w", i+1, namestrs[i].Name, err)
		}
		b = append(b, rec...)
	}

	return AppendPadding(b, size), nil
}

// ParseNamestrs parses count namestrs of the given size from a block (padding allowed).
func ParseNamestrs(data []byte, count, size int, v format.Version, dec encoding.TextDecoder) ([]Namestr, error) {
	if len(data) < count*size {
		return nil, errs.ErrTruncatedRecord
	}

	namestrs := make([]Namestr, count)
	for i := range namestrs {
		if err := namestrs[i].Parse(data[i*size:(i+1)*size], v, dec); err != nil {
			return nil, fmt.Errorf("namestr %d: %w", i+1, err)
		}
	}

	return namestrs, nil
}
