// Package section defines the record-level structures of the SAS transport format.
//
// A transport file is a sequence of 80-byte records. Structural records are header
// records framed by fixed literals:
//
//	HEADER RECORD******* | kind (8) | HEADER RECORD!!!!!!! | tail (32)
//
// The kind names the section that follows (LIBRARY, MEMBER, NAMESTR, OBS and their V8
// forms). HeaderKind recognizes a header record; the types in this package serialize
// and parse each section.
//
// # File Structure
//
//	┌───────────────────────────────────────────────────────────┐
//	│ Library header (3 records, LibraryHeader)                 │
//	├───────────────────────────────────────────────────────────┤
//	│ Member header (4 records, MemberHeader)        ┐          │
//	│ Namestr header (1 record, NamestrHeader)       │          │
//	│ Namestrs (N × 140 bytes, padded, Namestr)      │ repeated │
//	│ Label section (V8 only, optional, LabelEntry)  │ per      │
//	│ Observation header (1 record)                  │ member   │
//	│ Observations (rows × record length, padded)    ┘          │
//	└───────────────────────────────────────────────────────────┘
//
// Every section ends on a record boundary. Padding is blanks; PaddingLen and
// AppendPadding compute it.
//
// # Versions
//
// V5 and V8 share the layout but differ in their header kinds and field widths. V8
// member records carry 32-byte dataset names, namestrs carry the full variable name in
// a long-name field, and labels longer than 40 bytes or format names longer than 8
// bytes travel in a LABELV8 or LABELV9 section. The V8 observation header records the
// number of observations; zero means unknown.
//
// # Observations
//
// Layout places each column at a fixed offset within an observation. NewLayout assigns
// consecutive offsets when writing; NewLayoutFromNamestrs follows the positions
// recorded in the file when reading. EncodeRow and DecodeRow convert between rows of
// dataset values and observation bytes using the field codecs of the encoding package.
package section
