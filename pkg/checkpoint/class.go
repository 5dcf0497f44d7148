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

package checkpoint

// Class names the model head a checkpoint is loaded with.
type Class string

const (
	// AutoModel is the bare encoder without a task head.
	AutoModel Class = "AutoModel"

	// AutoModelForQuestionAnswering adds an extractive span head.
	AutoModelForQuestionAnswering Class = "AutoModelForQuestionAnswering"

	// AutoModelForSeq2SeqLM is an encoder-decoder generation model.
	AutoModelForSeq2SeqLM Class = "AutoModelForSeq2SeqLM"

	// AutoModelForSequenceClassification adds a sequence classification head.
	AutoModelForSequenceClassification Class = "AutoModelForSequenceClassification"
)

// String implements fmt.Stringer.
func (c Class) String() string {
	return string(c)
}
