// Package upload names and stores images attached to questions and answers.
package upload

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	questionPrefix = "Q_"
	answerPrefix   = "A_"
)

var allowedImageSuffixes = []string{".jpg", ".jpeg", ".png"}

// now is replaced in tests.
var now = time.Now

// ValidateImageType reports whether filename ends with .jpg, .jpeg or .png.
// The comparison is case-sensitive, so "photo.PNG" is rejected.
func ValidateImageType(filename string) bool {
	for _, suffix := range allowedImageSuffixes {
		if strings.HasSuffix(filename, suffix) {
			return true
		}
	}
	return false
}

// AssembleQuestionUploadedFileName builds Q_<user>_<y>_<m>_<d>_<h>_<min>_<s>_<uuid>_<original>.
func AssembleQuestionUploadedFileName(userID, originalFileName string) string {
	return assemble(questionPrefix, userID, originalFileName)
}

// AssembleAnswerUploadedFileName builds A_<user>_<y>_<m>_<d>_<h>_<min>_<s>_<uuid>_<original>.
func AssembleAnswerUploadedFileName(userID, originalFileName string) string {
	return assemble(answerPrefix, userID, originalFileName)
}

// assemble joins the parts with underscores. Time components are not zero
// padded; the random token is what keeps names unique within one second.
func assemble(prefix, userID, originalFileName string) string {
	t := now()
	return fmt.Sprintf("%s%s_%d_%d_%d_%d_%d_%d_%s_%s",
		prefix,
		userID,
		t.Year(),
		int(t.Month()),
		t.Day(),
		t.Hour(),
		t.Minute(),
		t.Second(),
		uuid.NewString(),
		originalFileName,
	)
}
