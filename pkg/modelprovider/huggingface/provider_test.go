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

package huggingface

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	retry "github.com/avast/retry-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-industries/txtai-fork/pkg/hfhub"
	"github.com/uni-industries/txtai-fork/pkg/modelprovider/transfer"
)

func TestProvider_SupportsURL(t *testing.T) {
	p := New(transfer.Options{})

	tests := []struct {
		url  string
		want bool
	}{
		{url: "https://huggingface.co/meta-llama/Llama-2-7b-hf", want: true},
		{url: "  https://huggingface.co/openai/gpt-2  ", want: true},
		{url: "hf://openai/whisper-tiny", want: true},
		{url: "meta-llama/Llama-2-7b-hf", want: false},
		{url: "https://modelscope.cn/models/qwen/Qwen-7B", want: false},
		{url: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, p.SupportsURL(tt.url))
		})
	}
}

func TestProvider_Name(t *testing.T) {
	assert.Equal(t, "huggingface", New(transfer.Options{}).Name())
}

func TestProvider_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/org/model/resolve/main/config.json":
			io.WriteString(w, `{"max_position_embeddings": 512}`)
		case "/org/model/resolve/main/tokenizer_config.json":
			io.WriteString(w, `{"model_max_length": 512}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := New(transfer.Options{RetryOpts: []retry.Option{retry.Attempts(1)}})
	p.newClient = func() (*hfhub.Client, error) {
		return &hfhub.Client{BaseURL: srv.URL, HTTPClient: srv.Client()}, nil
	}

	dest := t.TempDir()
	dir, err := p.Fetch(context.Background(), "org/model", dest, []string{"config.json", "tokenizer_config.json", "generation_config.json"})
	require.NoError(t, err)
	assert.Equal(t, dest, dir)
	assert.FileExists(t, filepath.Join(dir, "config.json"))
	assert.FileExists(t, filepath.Join(dir, "tokenizer_config.json"))
	assert.NoFileExists(t, filepath.Join(dir, "generation_config.json"))

	_, err = p.Fetch(context.Background(), "a/b/c", dest, []string{"config.json"})
	assert.Error(t, err)
}

func TestProvider_CheckAuth(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PATH", "")
	t.Setenv("HF_TOKEN", "")
	assert.Error(t, New(transfer.Options{}).CheckAuth())

	t.Setenv("HF_TOKEN", "hf_token")
	assert.NoError(t, New(transfer.Options{}).CheckAuth())
}
