package bincodec

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/segmentio/ksuid"
)

// Identifier codecs store ids as their raw bytes, never as text.
var (
	// UUID stores a 16-byte RFC 9562 identifier.
	UUID = Must(Fixed[uuid.UUID]())

	// ULID stores a 16-byte lexicographically sortable identifier.
	ULID = Must(Fixed[ulid.ULID]())

	// KSUID stores a 20-byte K-sortable identifier.
	KSUID = Transform(Codec[[20]byte](Must(Fixed[[20]byte]())),
		func(id ksuid.KSUID) ([20]byte, error) { return id, nil },
		func(raw [20]byte) (ksuid.KSUID, error) { return ksuid.FromBytes(raw[:]) },
		nil,
	)

	// UUIDText keeps a UUID in its canonical text form in memory and
	// stores it in 16 bytes. Only the lowercase hyphenated form decodes back
	// to the same string, so uppercase, urn:uuid:, braced and unhyphenated
	// inputs fail validation.
	UUIDText = Transform(Codec[uuid.UUID](UUID),
		uuid.Parse,
		func(id uuid.UUID) (string, error) { return id.String(), nil },
		checkCanonicalUUID,
	)
)

func checkCanonicalUUID(v string, path string) error {
	id, err := uuid.Parse(v)
	if err != nil {
		return validationError(path, "is not a valid UUID: %v", err)
	}
	if canonical := id.String(); canonical != v {
		return validationError(path, "needs to be in canonical form %q", canonical)
	}
	return nil
}
