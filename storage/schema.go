// Package storage 基于 data/db 实现领域仓储
//
// 重复字段（topics、speaker_keys 等）以 JSON 数组存储；日期存为 YYYY-MM-DD 文本，
// 日期时间存为 YYYY-MM-DD HH:MM 文本，字典序即时间序。
package storage

import (
	"context"
	"fmt"

	core "conference/data/db"
)

// 表名
const (
	tableConferences = "conferences"
	tableProfiles    = "profiles"
	tableSessions    = "sessions"
	tableSpeakers    = "speakers"
	tableWishlists   = "wishlists"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS conferences (
		id INTEGER PRIMARY KEY,
		organizer_user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		topics TEXT NOT NULL DEFAULT '[]',
		city TEXT NOT NULL DEFAULT '',
		start_date TEXT,
		end_date TEXT,
		month INTEGER NOT NULL DEFAULT 0,
		max_attendees INTEGER NOT NULL DEFAULT 0,
		seats_available INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_conferences_organizer ON conferences (organizer_user_id, name)`,
	`CREATE INDEX IF NOT EXISTS idx_conferences_seats ON conferences (seats_available)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		main_email TEXT NOT NULL DEFAULT '',
		tee_shirt_size TEXT NOT NULL DEFAULT 'NOT_SPECIFIED',
		conference_keys TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY,
		conference_key TEXT NOT NULL,
		title TEXT NOT NULL,
		highlights TEXT NOT NULL DEFAULT '',
		speaker_keys TEXT NOT NULL DEFAULT '[]',
		duration INTEGER NOT NULL DEFAULT 0,
		type_of_session TEXT NOT NULL DEFAULT '',
		date_time TEXT NOT NULL,
		hour INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_conference ON sessions (conference_key, type_of_session)`,
	`CREATE TABLE IF NOT EXISTS speakers (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS wishlists (
		id INTEGER PRIMARY KEY,
		profile_user_id TEXT NOT NULL UNIQUE,
		session_keys TEXT NOT NULL DEFAULT '[]'
	)`,
}

// Migrate 创建表结构，可重复执行
func Migrate(ctx context.Context, database core.IDatabase) error {
	for _, stmt := range schema {
		if _, err := database.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
