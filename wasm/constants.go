package wasm

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01
)

// Section IDs define the binary identifiers for each module section.
// Sections must appear in increasing order by ID (except custom sections).
const (
	SectionCustom    byte = 0  // Custom section (can appear anywhere)
	SectionType      byte = 1  // Type section
	SectionImport    byte = 2  // Import section
	SectionFunction  byte = 3  // Function section (type indices)
	SectionTable     byte = 4  // Table section
	SectionMemory    byte = 5  // Memory section
	SectionGlobal    byte = 6  // Global section
	SectionExport    byte = 7  // Export section
	SectionStart     byte = 8  // Start section
	SectionElement   byte = 9  // Element section
	SectionCode      byte = 10 // Code section (function bodies)
	SectionData      byte = 11 // Data section
	SectionDataCount byte = 12 // Data count section (bulk memory)
	SectionTag       byte = 13 // Tag section (exception handling)
)

// Type definition forms of the GC draft binary encoding.
const (
	FuncTypeByte   byte = 0x60 // func
	StructTypeByte byte = 0x5F // struct
	ArrayTypeByte  byte = 0x5E // array
	RecTypeByte    byte = 0x4F // rec group
	SubTypeByte    byte = 0x50 // sub with supertypes
	SubFinalByte   byte = 0x4E // sub final with supertypes
)

// Packed storage types.
const (
	PackedI8  byte = 0x7A
	PackedI16 byte = 0x79
)

// NameSectionName is the custom section carrying module and type names.
const NameSectionName = "name"

// Name section subsection IDs.
const (
	NameSubModule   byte = 0
	NameSubFunction byte = 1
	NameSubLocal    byte = 2
	NameSubType     byte = 4
)
