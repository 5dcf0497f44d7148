/*
 *     Copyright 2025 The CNAI Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cache

import (
	_ "crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	sha256 "github.com/minio/sha256-simd"
	godigest "github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"

	"github.com/uni-industries/txtai-fork/pkg/xattr"
)

// Digest returns the sha256 digest of the file at path. A digest recorded in
// the file's extended attributes is reused while size and mtime still match.
func Digest(path string) (godigest.Digest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	size := strconv.FormatInt(info.Size(), 10)
	mtime := strconv.FormatInt(info.ModTime().UnixNano(), 10)

	if cached, ok := cachedDigest(path, size, mtime); ok {
		logrus.Debugf("cache: retrieved digest from xattr for file %s [digest: %s]", path, cached)
		return cached, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}

	dgst := godigest.NewDigestFromBytes(godigest.SHA256, hash.Sum(nil))
	storeDigest(path, size, mtime, dgst)

	return dgst, nil
}

func cachedDigest(path, size, mtime string) (godigest.Digest, bool) {
	if v, err := xattr.Get(path, xattr.MakeKey(xattr.KeySize)); err != nil || string(v) != size {
		return "", false
	}

	if v, err := xattr.Get(path, xattr.MakeKey(xattr.KeyMtime)); err != nil || string(v) != mtime {
		return "", false
	}

	v, err := xattr.Get(path, xattr.MakeKey(xattr.KeySha256))
	if err != nil {
		return "", false
	}

	dgst, err := godigest.Parse(string(v))
	if err != nil {
		return "", false
	}

	return dgst, true
}

func storeDigest(path, size, mtime string, dgst godigest.Digest) {
	attrs := []struct {
		key   string
		value string
	}{
		{xattr.KeySha256, dgst.String()},
		{xattr.KeySize, size},
		{xattr.KeyMtime, mtime},
	}

	for _, attr := range attrs {
		if err := xattr.Set(path, xattr.MakeKey(attr.key), []byte(attr.value)); err != nil {
			logrus.Debugf("cache: failed to set xattr %s for file %s: %v", attr.key, path, err)
			return
		}
	}
}

// DigestFiles returns the digests of the named files in dir. Missing files
// are omitted.
func DigestFiles(dir string, names []string) (map[string]godigest.Digest, error) {
	digests := make(map[string]godigest.Digest, len(names))
	for _, name := range names {
		dgst, err := Digest(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		digests[name] = dgst
	}

	return digests, nil
}

// Verify reports whether every file recorded in item is still present with
// the recorded digest.
func Verify(item *Item) bool {
	for name, want := range item.Files {
		got, err := Digest(filepath.Join(item.Dir, name))
		if err != nil || got != want {
			return false
		}
	}

	return true
}
