// Package file stores documents and blobs on the local filesystem.
package file
