// Package dataset reads registration records from the SQLite dataset.
//
// The dataset holds one row per registration in a `vehicles` table:
//
//	year          INTEGER  registration year
//	make          TEXT     free-text make as recorded
//	model         TEXT     free-text model as recorded
//	model_year    INTEGER  vehicle model year, nullable
//	vehicle_type  TEXT     category code (PAU, CAM, MOT, ...), nullable
//
// LoadPairs aggregates a registration period into distinct make/model pairs.
// Span reports the full registration span of one pair across the whole
// dataset and backs the temporal validator. Handles are read-only; every
// worker task opens its own through an Opener.
package dataset
