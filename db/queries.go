package db

import (
	_ "embed"
)

// Schema and migrations

//go:embed sql/create_tables.sql
var CreateTablesSQL string

// Source queries

//go:embed sql/insert_source.sql
var InsertSourceSQL string

//go:embed sql/select_source_by_url.sql
var SelectSourceByURLSQL string

//go:embed sql/update_source_duration.sql
var UpdateSourceDurationSQL string

//go:embed sql/update_source_probe_error.sql
var UpdateSourceProbeErrorSQL string

// Clip queries

//go:embed sql/insert_clip.sql
var InsertClipSQL string

//go:embed sql/select_clips.sql
var SelectClipsSQL string

//go:embed sql/select_clip_by_id.sql
var SelectClipByIDSQL string

//go:embed sql/select_clips_by_source.sql
var SelectClipsBySourceSQL string

//go:embed sql/select_clip_ids_by_prefix.sql
var SelectClipIDsByPrefixSQL string

//go:embed sql/select_next_unprobed.sql
var SelectNextUnprobedSQL string

//go:embed sql/delete_clip.sql
var DeleteClipSQL string

// Clip edit queries

//go:embed sql/update_clip_trim.sql
var UpdateClipTrimSQL string

//go:embed sql/update_clip_rate.sql
var UpdateClipRateSQL string

//go:embed sql/update_clip_crop.sql
var UpdateClipCropSQL string

//go:embed sql/update_clip_title.sql
var UpdateClipTitleSQL string

//go:embed sql/update_clip_saved.sql
var UpdateClipSavedSQL string
