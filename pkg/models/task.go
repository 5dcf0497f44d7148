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

package models

import "github.com/uni-industries/txtai-fork/pkg/checkpoint"

// Task selects the model head a checkpoint is loaded with.
type Task string

const (
	TaskDefault                Task = "default"
	TaskQuestionAnswering      Task = "question-answering"
	TaskSummarization          Task = "summarization"
	TaskTextClassification     Task = "text-classification"
	TaskZeroShotClassification Task = "zero-shot-classification"
)

// Tasks lists the supported tasks.
func Tasks() []Task {
	return []Task{
		TaskDefault,
		TaskQuestionAnswering,
		TaskSummarization,
		TaskTextClassification,
		TaskZeroShotClassification,
	}
}

// Class returns the model class for the task and whether the task is
// supported. Task names are exact, so the empty task is unsupported.
func (t Task) Class() (checkpoint.Class, bool) {
	switch t {
	case TaskDefault:
		return checkpoint.AutoModel, true
	case TaskQuestionAnswering:
		return checkpoint.AutoModelForQuestionAnswering, true
	case TaskSummarization:
		return checkpoint.AutoModelForSeq2SeqLM, true
	case TaskTextClassification, TaskZeroShotClassification:
		return checkpoint.AutoModelForSequenceClassification, true
	default:
		return "", false
	}
}
