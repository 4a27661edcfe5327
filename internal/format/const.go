// Package format implements the fixed-layout binary records of the ZIP
// container format: local file headers, data descriptors, central
// directory headers, and the end-of-central-directory record. All
// integers are little-endian. The codec is stateless; callers own the
// buffers.
package format

// Record signatures. Every record begins with the two byte marker
// 0x4b50 ("PK") followed by a record type.
const (
	LocalSignature      uint32 = 0x04034b50
	DescriptorSignature uint32 = 0x08074b50
	CentralSignature    uint32 = 0x02014b50
	EndSignature        uint32 = 0x06054b50
)

// Fixed record sizes in bytes, excluding variable-length trailers
// (file name, extra field, comment).
const (
	LocalHeaderSize   = 30
	DescriptorSize    = 16
	CentralHeaderSize = 46
	EndHeaderSize     = 22
)

// MaxCommentLength bounds the end-record comment and therefore the
// backward-scan window when locating the end record.
const MaxCommentLength = 0xFFFF

// Compression method codes. Only Stored and Deflated are implemented
// by the compression capability; the rest are declared for decoding.
const (
	MethodStored          uint16 = 0
	MethodShrunk          uint16 = 1
	MethodReduced1        uint16 = 2
	MethodReduced2        uint16 = 3
	MethodReduced3        uint16 = 4
	MethodReduced4        uint16 = 5
	MethodImploded        uint16 = 6
	MethodDeflated        uint16 = 8
	MethodEnhancedDeflate uint16 = 9
	MethodPKWareDCL       uint16 = 10
	MethodBzip2           uint16 = 12
	MethodLZMA            uint16 = 14
	MethodIBMTerse        uint16 = 18
	MethodIBMLZ77         uint16 = 19
	MethodAES             uint16 = 99
)

// General purpose flag bits.
const (
	FlagEncrypted        uint16 = 1 << 0
	FlagCompressOption1  uint16 = 1 << 1
	FlagCompressOption2  uint16 = 1 << 2
	FlagDescriptor       uint16 = 1 << 3
	FlagEnhancedDeflate  uint16 = 1 << 4
	FlagStrongEncryption uint16 = 1 << 6
	FlagUTF8             uint16 = 1 << 11
	FlagMaskedHeaders    uint16 = 1 << 12
)
