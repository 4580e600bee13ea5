package repository

const (
	getVideoByIDQuery = `SELECT video_id, user_id, title, description, thumbnail_url, view_count, like_count, dislike_count,
					comment_count, duration, status, created_at, updated_at FROM videos WHERE video_id = $1`
	getVideoFileByIDQuery = `SELECT file_id, video_id, user_id, file_name, file_path, file_size, file_type, resolution,
					duration, status, created_at, updated_at FROM video_files WHERE file_id = $1`
	updateVideoStatusQuery     = `UPDATE videos SET status = $2, updated_at = now() WHERE video_id = $1`
	updateVideoFileStatusQuery = `UPDATE video_files SET status = $2, updated_at = now() WHERE file_id = $1`
	setVideoTranscodedQuery    = `UPDATE videos SET status = $2, duration = $3, updated_at = now() WHERE video_id = $1`
	setFileTranscodedQuery     = `UPDATE video_files SET status = $2, file_path = $3, resolution = $4, duration = $5,
					file_type = 'hls', updated_at = now() WHERE file_id = $1`
	markVideoPublishedQuery = `UPDATE videos SET status = $2, thumbnail_url = $3, updated_at = now() WHERE video_id = $1`
	markFilePublishedQuery  = `UPDATE video_files SET status = $2, file_path = $3, updated_at = now() WHERE file_id = $1`
	getViewCountQuery       = `SELECT view_count FROM videos WHERE video_id = $1`
	incrementViewCountQuery = `UPDATE videos SET view_count = view_count + $2, updated_at = now() WHERE video_id = $1`
)
