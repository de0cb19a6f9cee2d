package domain

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// 实体类型名称
const (
	KindProfile    = "Profile"
	KindConference = "Conference"
	KindSession    = "Session"
	KindSpeaker    = "Speaker"
	KindWishlist   = "Wishlist"
)

// Key 层级实体键，ID 与 Name 二选一
//
// 编码形式为 URL 安全的 base64，可直接出现在路径参数中。
type Key struct {
	Kind   string
	ID     int64
	Name   string
	Parent *Key
}

// NewKey 创建数值 ID 键
func NewKey(kind string, id int64, parent *Key) *Key {
	return &Key{Kind: kind, ID: id, Parent: parent}
}

// NewNameKey 创建字符串名称键
func NewNameKey(kind, name string, parent *Key) *Key {
	return &Key{Kind: kind, Name: name, Parent: parent}
}

// ProfileKey 用户资料键，名称即用户 ID
func ProfileKey(userID string) *Key {
	return NewNameKey(KindProfile, userID, nil)
}

// Root 返回最顶层祖先
func (k *Key) Root() *Key {
	for k.Parent != nil {
		k = k.Parent
	}
	return k
}

// Equal 比较两个键的完整路径
func (k *Key) Equal(o *Key) bool {
	for k != nil && o != nil {
		if k.Kind != o.Kind || k.ID != o.ID || k.Name != o.Name {
			return false
		}
		k, o = k.Parent, o.Parent
	}
	return k == nil && o == nil
}

// String 返回可读路径，如 Profile:n:alice/Conference:i:42
func (k *Key) String() string {
	var segments []string
	for cur := k; cur != nil; cur = cur.Parent {
		segments = append(segments, cur.segment())
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "/")
}

// Encode 返回 websafe 编码
func (k *Key) Encode() string {
	if k == nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(k.String()))
}

func (k *Key) segment() string {
	if k.Name != "" {
		return k.Kind + ":n:" + url.PathEscape(k.Name)
	}
	return k.Kind + ":i:" + strconv.FormatInt(k.ID, 10)
}

// DecodeKey 解析 websafe 键
func DecodeKey(websafe string) (*Key, error) {
	if websafe == "" {
		return nil, NewInvalidKeyError(websafe, errors.New("empty key"))
	}

	raw, err := base64.RawURLEncoding.DecodeString(websafe)
	if err != nil {
		return nil, NewInvalidKeyError(websafe, err)
	}

	var parent *Key
	for _, seg := range strings.Split(string(raw), "/") {
		parts := strings.SplitN(seg, ":", 3)
		if len(parts) != 3 || parts[0] == "" {
			return nil, NewInvalidKeyError(websafe, errors.New("malformed segment"))
		}

		key := &Key{Kind: parts[0], Parent: parent}
		switch parts[1] {
		case "i":
			id, err := strconv.ParseInt(parts[2], 10, 64)
			if err != nil || id <= 0 {
				return nil, NewInvalidKeyError(websafe, errors.New("bad id"))
			}
			key.ID = id
		case "n":
			name, err := url.PathUnescape(parts[2])
			if err != nil || name == "" {
				return nil, NewInvalidKeyError(websafe, errors.New("bad name"))
			}
			key.Name = name
		default:
			return nil, NewInvalidKeyError(websafe, errors.New("unknown segment type"))
		}
		parent = key
	}

	return parent, nil
}

// DecodeKind 解析键并校验实体类型
func DecodeKind(websafe, kind string) (*Key, error) {
	key, err := DecodeKey(websafe)
	if err != nil {
		return nil, err
	}
	if key.Kind != kind {
		return nil, &RepositoryError{
			Code:    ErrKindMismatch.Code,
			Message: "expected " + kind + " key, got " + key.Kind,
			Key:     websafe,
		}
	}
	return key, nil
}
