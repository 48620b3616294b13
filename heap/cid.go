package heap

// ClassId identifies an entry in the class table. It is stored in the
// object header (see object.go) and so is bounded to the header's cid
// field width.
type ClassId uint32

// Fixed class ids. These are the single source of truth for every
// built-in kind the collector itself must recognize structurally —
// changing a value here changes the meaning of every header already
// written with the old value, so new fixed kinds are appended, never
// inserted.
//
// CidFirstRegular is the first id handed out by AllocateClassId; every
// value below it is reserved for a kind the collector treats
// specially during scavenging, ephemeron/weak processing, or become.
const (
	CidIllegal ClassId = iota
	CidForwardingCorpse
	CidWeakArray
	CidEphemeron
	CidByteArray
	CidByteString
	CidWideString
	CidArray
	CidClosure
	CidActivation
	CidMediumInteger
	CidLargeInteger
	CidFloat64

	CidFirstRegular
)

// maxClassId is the largest value the header's cid field can hold.
// See object.go's bit layout: 24 bits.
const maxClassId = 1<<24 - 1

func (c ClassId) valid() bool { return c <= maxClassId }
