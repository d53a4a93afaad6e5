// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsIngestion holds the Prometheus metrics for one Indexer's runs.
type metricsIngestion struct {
	once sync.Once

	filesProcessed     prometheus.Counter
	functionsExtracted prometheus.Counter
	classesExtracted   prometheus.Counter
	chunksExtracted    prometheus.Counter
	duplicatesSkipped  prometheus.Counter
	entitiesUpserted   prometheus.Counter
	embeddingErrors    prometheus.Counter
	runsFailed         prometheus.Counter

	parseDuration prometheus.Histogram
	embedDuration prometheus.Histogram
	writeDuration prometheus.Histogram
	totalDuration prometheus.Histogram
}

var ingMetrics metricsIngestion

func (m *metricsIngestion) init() {
	m.once.Do(func() {
		m.filesProcessed = prometheus.NewCounter(prometheus.CounterOpts{Name: "codectx_ing_files_processed_total", Help: "Files parsed across all index runs"})
		m.functionsExtracted = prometheus.NewCounter(prometheus.CounterOpts{Name: "codectx_ing_functions_extracted_total", Help: "Functions extracted across all index runs"})
		m.classesExtracted = prometheus.NewCounter(prometheus.CounterOpts{Name: "codectx_ing_classes_extracted_total", Help: "Classes extracted across all index runs"})
		m.chunksExtracted = prometheus.NewCounter(prometheus.CounterOpts{Name: "codectx_ing_chunks_extracted_total", Help: "Chunks extracted across all index runs"})
		m.duplicatesSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "codectx_ing_duplicates_skipped_total", Help: "Functions skipped as signature duplicates"})
		m.entitiesUpserted = prometheus.NewCounter(prometheus.CounterOpts{Name: "codectx_ing_entities_upserted_total", Help: "Entities written to the vector store"})
		m.embeddingErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "codectx_ing_embedding_errors_total", Help: "Entity embedding calls that failed"})
		m.runsFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "codectx_ing_runs_failed_total", Help: "Index runs that returned an error"})

		buckets := []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}
		m.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "codectx_ing_parse_seconds", Help: "Time spent parsing a repository", Buckets: buckets})
		m.embedDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "codectx_ing_embed_seconds", Help: "Time spent embedding entities", Buckets: buckets})
		m.writeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "codectx_ing_write_seconds", Help: "Time spent upserting into the vector store", Buckets: buckets})
		m.totalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "codectx_ing_total_seconds", Help: "Total duration of an index run", Buckets: buckets})

		prometheus.MustRegister(
			m.filesProcessed, m.functionsExtracted, m.classesExtracted, m.chunksExtracted,
			m.duplicatesSkipped, m.entitiesUpserted, m.embeddingErrors, m.runsFailed,
			m.parseDuration, m.embedDuration, m.writeDuration, m.totalDuration,
		)
	})
}

// record folds one completed IndexResult into the package's metrics.
func (m *metricsIngestion) record(r *IndexResult) {
	m.init()
	m.filesProcessed.Add(float64(r.FilesProcessed))
	m.functionsExtracted.Add(float64(r.FunctionsExtracted))
	m.classesExtracted.Add(float64(r.ClassesExtracted))
	m.chunksExtracted.Add(float64(r.ChunksExtracted))
	m.duplicatesSkipped.Add(float64(r.DuplicatesSkipped))
	m.entitiesUpserted.Add(float64(r.EntitiesUpserted))
	m.embeddingErrors.Add(float64(r.EmbeddingErrors))
	m.parseDuration.Observe(r.ParseDuration.Seconds())
	m.embedDuration.Observe(r.EmbedDuration.Seconds())
	m.writeDuration.Observe(r.WriteDuration.Seconds())
	m.totalDuration.Observe(r.TotalDuration.Seconds())
}

func (m *metricsIngestion) recordFailure() {
	m.init()
	m.runsFailed.Inc()
}
