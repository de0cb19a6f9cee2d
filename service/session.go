package service

import (
	"context"
	"strings"

	"conference/auth"
	"conference/domain"
	"conference/filter"
	"conference/logging"
	"conference/messaging"
	"conference/tasks"
	"conference/validation"
)

// SessionService 会议场次
type SessionService struct {
	repos     Repositories
	speakers  *SpeakerService
	publisher messaging.IPublisher
	logger    logging.Logger
}

func NewSessionService(repos Repositories, speakers *SpeakerService, publisher messaging.IPublisher, logger logging.Logger) *SessionService {
	return &SessionService{
		repos:     repos,
		speakers:  speakers,
		publisher: publisher,
		logger:    logger.WithFields(logging.String("service", "session")),
	}
}

// Create 在会议下创建场次，仅组织者可操作
func (s *SessionService) Create(ctx context.Context, u *auth.User, websafeConferenceKey string, form SessionForm) (*SessionForm, error) {
	if err := requireUser(u); err != nil {
		return nil, err
	}
	if err := validation.First(
		validation.ValidateRequired(form.Title, "Session", "title"),
		validation.ValidateRequired(form.StartTime, "Session", "startTime"),
		validation.ValidateRequired(form.Date, "Session", "date"),
		validation.ValidateNonNegative(form.Duration, "duration"),
	); err != nil {
		return nil, err
	}
	confKey, err := domain.DecodeKind(websafeConferenceKey, domain.KindConference)
	if err != nil {
		return nil, err
	}
	at, err := validation.ParseDate(firstTen(form.Date)+" "+strings.TrimSpace(form.StartTime), filter.DateTimeLayout, "date/startTime")
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		Title:                form.Title,
		Highlights:           form.Highlights,
		WebsafeConferenceKey: confKey.Encode(),
		Duration:             form.Duration,
		TypeOfSession:        form.TypeOfSession,
		DateTime:             at.UTC(),
		Hour:                 at.Hour(),
	}

	emails := make([]string, 0, len(form.SpeakerEmails))
	err = s.repos.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.repos.Conferences().Get(ctx, confKey)
		if err != nil {
			return err
		}
		if !c.OwnedBy(u.ID) {
			return forbidden("You must be the conference organizer to add sessions")
		}
		for _, email := range form.SpeakerEmails {
			key, err := s.speakers.FindOrCreate(ctx, email)
			if err != nil {
				return err
			}
			if !session.HasSpeaker(key) {
				session.SpeakerKeys = append(session.SpeakerKeys, key)
				emails = append(emails, strings.TrimSpace(email))
			}
		}
		return s.repos.Sessions().Save(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	if len(session.SpeakerKeys) > 0 {
		s.enqueueFeaturedSpeaker(ctx, session)
	}
	out := sessionToForm(session, emails)
	return &out, nil
}

func (s *SessionService) enqueueFeaturedSpeaker(ctx context.Context, session *domain.Session) {
	if s.publisher == nil {
		return
	}
	msg := tasks.NewCacheFeaturedSpeaker(session.SpeakerKeys, session.WebsafeConferenceKey)
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Error(ctx, "enqueue featured speaker failed",
			logging.String("session", session.WebsafeKey()), logging.Error(err))
	}
}

// ListByConference 会议的全部场次
func (s *SessionService) ListByConference(ctx context.Context, websafeConferenceKey string) (*SessionForms, error) {
	confKey, err := domain.DecodeKind(websafeConferenceKey, domain.KindConference)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.Sessions().ListByConference(ctx, confKey.Encode())
	if err != nil {
		return nil, err
	}
	return s.toForms(ctx, items)
}

// ListBySpeaker 演讲者参与的全部场次
func (s *SessionService) ListBySpeaker(ctx context.Context, websafeSpeakerKey string) (*SessionForms, error) {
	speakerKey, err := domain.DecodeKind(websafeSpeakerKey, domain.KindSpeaker)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.Sessions().ListBySpeaker(ctx, speakerKey.Encode())
	if err != nil {
		return nil, err
	}
	return s.toForms(ctx, items)
}

// ListByConferenceAndType 会议中指定类型的场次
func (s *SessionService) ListByConferenceAndType(ctx context.Context, websafeConferenceKey, typeOfSession string) (*SessionForms, error) {
	confKey, err := domain.DecodeKind(websafeConferenceKey, domain.KindConference)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.Sessions().ListByConferenceAndType(ctx, confKey.Encode(), typeOfSession)
	if err != nil {
		return nil, err
	}
	return s.toForms(ctx, items)
}

// QueryByTypeAndFilters 在会议范围内按过滤条件查询，再按场次类型筛选
func (s *SessionService) QueryByTypeAndFilters(ctx context.Context, form SessionQueryForms) (*SessionForms, error) {
	if err := validation.ValidateRequired(form.TypeOfSession, "Session query", "typeOfSession"); err != nil {
		return nil, err
	}
	confKey, err := domain.DecodeKind(form.WebsafeConferenceKey, domain.KindConference)
	if err != nil {
		return nil, err
	}
	wsck := confKey.Encode()

	var items []*domain.Session
	if len(form.Filters) > 0 {
		plan, err := filter.Compile(domain.KindSession, filter.SessionCatalog, form.Filters,
			filter.Eq("websafeConferenceKey", wsck), "title")
		if err != nil {
			return nil, err
		}
		items, err = s.repos.Sessions().Query(ctx, plan)
		if err != nil {
			return nil, err
		}
	} else {
		items, err = s.repos.Sessions().ListByConference(ctx, wsck)
		if err != nil {
			return nil, err
		}
	}

	matched := items[:0]
	for _, session := range items {
		if session.TypeOfSession == form.TypeOfSession {
			matched = append(matched, session)
		}
	}
	return s.toForms(ctx, matched)
}

// sessions 按 websafe 键批量读取，跳过无效或不存在的键
func (s *SessionService) sessions(ctx context.Context, websafeKeys []string) ([]*domain.Session, error) {
	keys := make([]*domain.Key, 0, len(websafeKeys))
	for _, wsk := range websafeKeys {
		if key, err := domain.DecodeKind(wsk, domain.KindSession); err == nil {
			keys = append(keys, key)
		}
	}
	return s.repos.Sessions().GetMulti(ctx, keys)
}

// toForms 映射场次列表，演讲者键替换为邮箱
func (s *SessionService) toForms(ctx context.Context, items []*domain.Session) (*SessionForms, error) {
	var speakerKeys []string
	for _, session := range items {
		speakerKeys = append(speakerKeys, session.SpeakerKeys...)
	}
	emails, err := s.speakers.emails(ctx, speakerKeys)
	if err != nil {
		return nil, err
	}

	out := &SessionForms{Items: make([]SessionForm, 0, len(items))}
	for _, session := range items {
		var list []string
		for _, key := range session.SpeakerKeys {
			if email, ok := emails[key]; ok {
				list = append(list, email)
			}
		}
		out.Items = append(out.Items, sessionToForm(session, list))
	}
	return out, nil
}
