package s3

import (
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// AvatarKey is avatars/<clinic>/<uuid><ext>; clinic is "unassigned" when nil.
func AvatarKey(clinicID *uuid.UUID, ext string) string {
	owner := "unassigned"
	if clinicID != nil {
		owner = clinicID.String()
	}
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join("avatars", owner, uuid.NewString()+ext)
}

// DocumentKey is documents/<clinic>/<kind>/<id>/r<revision>.pdf. Each
// revision of a document has its own object.
func DocumentKey(clinicID uuid.UUID, kind string, id uuid.UUID, revision int64) string {
	return path.Join("documents", clinicID.String(), kind, id.String(), "r"+strconv.FormatInt(revision, 10)+".pdf")
}
