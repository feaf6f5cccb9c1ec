// Package publish turns a local artifact into a retrievable URL, either via
// S3-compatible object storage or a locally served downloads directory.
package publish

import "context"

// Publisher uploads or moves the artifact at localPath under the logical key
// and returns its public location. Called exactly once per successful job
// attempt, after the artifact exists and before the job is marked complete.
type Publisher interface {
	Publish(ctx context.Context, localPath, key string) (string, error)
}
