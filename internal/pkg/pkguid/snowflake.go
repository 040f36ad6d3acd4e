package pkguid

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// Epoch is the custom epoch used by Snowflake IDs (2026-01-01 00:00:00 UTC-3).
const Epoch int64 = 1767236400000

// Snowflake generates time-ordered numeric IDs.
type Snowflake struct {
	node *snowflake.Node
}

func generateRandomNodeID() (int64, error) {
	var nodeID int64
	err := binary.Read(rand.Reader, binary.BigEndian, &nodeID)
	if err != nil {
		return 0, err
	}

	return nodeID & (1<<10 - 1), nil // 10 bits node id
}

// NewSnowflake constructs a generator for the given node (0..1023).
// A negative node picks a random one.
func NewSnowflake(node int64) (*Snowflake, error) {
	if node < 0 {
		var err error
		if node, err = generateRandomNodeID(); err != nil {
			return nil, err
		}
	}

	snowflake.Epoch = Epoch

	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: n}, nil
}

// Generate returns a new unique numeric ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

// AsString adapts the generator to StringID using the base-10 form.
func (s *Snowflake) AsString() StringID {
	return StringFunc(func() string {
		return strconv.FormatInt(s.Generate(), 10)
	})
}
