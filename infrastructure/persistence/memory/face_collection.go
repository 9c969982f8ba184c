package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"attendance-backend/application/ports"
	"attendance-backend/domain/employee"

	"github.com/google/uuid"
)

// FaceCollection is a stand-in face index for local runs. An image's "face"
// is the person named by its object key, so John_Smith.jpg and
// john_smith.png match each other. A key without a name has no face.
type FaceCollection struct {
	faults
	mu    sync.RWMutex
	faces map[string]string // face signature -> face ID
}

// NewFaceCollection creates an empty collection
func NewFaceCollection() *FaceCollection {
	return &FaceCollection{faces: make(map[string]string)}
}

var _ ports.FaceCollection = (*FaceCollection)(nil)

func (c *FaceCollection) EnsureCollection(ctx context.Context) error {
	return c.checkError("EnsureCollection")
}

func (c *FaceCollection) SearchByImage(ctx context.Context, img ports.ImageRef, maxFaces int, threshold float64) ([]ports.FaceMatch, error) {
	if err := c.checkError("SearchByImage"); err != nil {
		return nil, err
	}

	sig, ok := signature(img.Key)
	if !ok {
		return nil, ports.ErrNoFaceDetected
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	faceID, found := c.faces[sig]
	if !found || maxFaces < 1 || threshold > 100 {
		return nil, nil
	}
	return []ports.FaceMatch{{FaceID: faceID, Similarity: 100}}, nil
}

func (c *FaceCollection) IndexFace(ctx context.Context, img ports.ImageRef) (string, error) {
	if err := c.checkError("IndexFace"); err != nil {
		return "", err
	}

	sig, ok := signature(img.Key)
	if !ok {
		return "", ports.ErrNoFaceDetected
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Rekognition would index a second descriptor for the same person
	faceID := uuid.NewString()
	if _, exists := c.faces[sig]; !exists {
		c.faces[sig] = faceID
	}
	return faceID, nil
}

// FaceIDs returns the indexed face IDs in sorted order
func (c *FaceCollection) FaceIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.faces))
	for _, id := range c.faces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func signature(key string) (string, bool) {
	first, last := employee.NameFromKey(key)
	sig := strings.ToLower(strings.TrimSpace(first + " " + last))
	return sig, sig != ""
}
