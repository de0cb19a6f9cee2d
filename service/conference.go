package service

import (
	"context"
	"encoding/json"
	stdErrors "errors"

	"conference/auth"
	"conference/domain"
	"conference/filter"
	"conference/logging"
	"conference/messaging"
	"conference/tasks"
	"conference/validation"
)

// ConferenceService 会议的创建、查询与报名
type ConferenceService struct {
	repos     Repositories
	profiles  *ProfileService
	publisher messaging.IPublisher
	logger    logging.Logger
}

func NewConferenceService(repos Repositories, profiles *ProfileService, publisher messaging.IPublisher, logger logging.Logger) *ConferenceService {
	return &ConferenceService{
		repos:     repos,
		profiles:  profiles,
		publisher: publisher,
		logger:    logger.WithFields(logging.String("service", "conference")),
	}
}

// Create 创建会议并发送确认邮件任务
func (s *ConferenceService) Create(ctx context.Context, u *auth.User, form ConferenceForm) (*ConferenceForm, error) {
	if err := requireUser(u); err != nil {
		return nil, err
	}
	if err := validation.ValidateRequired(form.Name, "Conference", "name"); err != nil {
		return nil, err
	}
	start, err := validation.ParseDate(firstTen(form.StartDate), filter.DateLayout, "startDate")
	if err != nil {
		return nil, err
	}
	end, err := validation.ParseDate(firstTen(form.EndDate), filter.DateLayout, "endDate")
	if err != nil {
		return nil, err
	}
	if err := validation.First(
		validation.ValidateNonNegative(form.MaxAttendees, "maxAttendees"),
		validation.ValidateNonNegative(form.SeatsAvailable, "seatsAvailable"),
	); err != nil {
		return nil, err
	}

	c := &domain.Conference{
		Name:            form.Name,
		Description:     form.Description,
		OrganizerUserID: u.ID,
		Topics:          form.Topics,
		City:            form.City,
		EndDate:         end,
		MaxAttendees:    form.MaxAttendees,
		SeatsAvailable:  form.SeatsAvailable,
	}
	if c.City == "" {
		c.City = domain.DefaultCity
	}
	if len(c.Topics) == 0 {
		c.Topics = domain.DefaultTopics()
	}
	c.SetStartDate(start)
	if c.MaxAttendees > 0 {
		c.SeatsAvailable = c.MaxAttendees
	}

	if err := s.repos.Conferences().Save(ctx, c); err != nil {
		return nil, err
	}

	out := conferenceToForm(c, "")
	s.enqueueConfirmation(ctx, u.Email, out)
	return &out, nil
}

// enqueueConfirmation 会议已保存，任务投递失败只记录日志
func (s *ConferenceService) enqueueConfirmation(ctx context.Context, email string, form ConferenceForm) {
	if s.publisher == nil || email == "" {
		return
	}
	info, err := json.Marshal(form)
	if err != nil {
		s.logger.Warn(ctx, "encode conference info", logging.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, tasks.NewSendConfirmationEmail(email, string(info))); err != nil {
		s.logger.Error(ctx, "enqueue confirmation email failed",
			logging.String("conference", form.WebsafeKey), logging.Error(err))
	}
}

// Update 只修改表单中非空的字段，仅组织者可操作
func (s *ConferenceService) Update(ctx context.Context, u *auth.User, websafeKey string, form ConferenceForm) (*ConferenceForm, error) {
	if err := requireUser(u); err != nil {
		return nil, err
	}
	key, err := domain.DecodeKind(websafeKey, domain.KindConference)
	if err != nil {
		return nil, err
	}

	var out ConferenceForm
	err = s.repos.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.repos.Conferences().Get(ctx, key)
		if err != nil {
			return err
		}
		if !c.OwnedBy(u.ID) {
			return forbidden("Only the owner can update the conference.")
		}
		if err := applyConferenceForm(c, form); err != nil {
			return err
		}
		if err := s.repos.Conferences().Save(ctx, c); err != nil {
			return err
		}
		names, err := s.profiles.displayNames(ctx, []string{u.ID})
		if err != nil {
			return err
		}
		out = conferenceToForm(c, names[u.ID])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func applyConferenceForm(c *domain.Conference, form ConferenceForm) error {
	if form.Name != "" {
		c.Name = form.Name
	}
	if form.Description != "" {
		c.Description = form.Description
	}
	if len(form.Topics) > 0 {
		c.Topics = form.Topics
	}
	if form.City != "" {
		c.City = form.City
	}
	if form.StartDate != "" {
		start, err := validation.ParseDate(firstTen(form.StartDate), filter.DateLayout, "startDate")
		if err != nil {
			return err
		}
		c.SetStartDate(start)
	}
	if form.EndDate != "" {
		end, err := validation.ParseDate(firstTen(form.EndDate), filter.DateLayout, "endDate")
		if err != nil {
			return err
		}
		c.EndDate = end
	}
	if form.MaxAttendees > 0 {
		c.MaxAttendees = form.MaxAttendees
	}
	if form.SeatsAvailable > 0 {
		c.SeatsAvailable = form.SeatsAvailable
	}
	return nil
}

// Get 按 websafe 键读取会议
func (s *ConferenceService) Get(ctx context.Context, websafeKey string) (*ConferenceForm, error) {
	key, err := domain.DecodeKind(websafeKey, domain.KindConference)
	if err != nil {
		return nil, err
	}
	c, err := s.repos.Conferences().Get(ctx, key)
	if err != nil {
		return nil, err
	}
	names, err := s.profiles.displayNames(ctx, []string{c.OrganizerUserID})
	if err != nil {
		return nil, err
	}
	out := conferenceToForm(c, names[c.OrganizerUserID])
	return &out, nil
}

// ListCreated 当前用户创建的会议，按名称排序
func (s *ConferenceService) ListCreated(ctx context.Context, u *auth.User) (*ConferenceForms, error) {
	if err := requireUser(u); err != nil {
		return nil, err
	}
	items, err := s.repos.Conferences().ListByOrganizer(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return s.toForms(ctx, items)
}

// Query 按过滤条件查询会议
func (s *ConferenceService) Query(ctx context.Context, form ConferenceQueryForms) (*ConferenceForms, error) {
	plan, err := filter.Compile(domain.KindConference, filter.ConferenceCatalog, form.Filters, nil, "name")
	if err != nil {
		return nil, err
	}
	items, err := s.repos.Conferences().Query(ctx, plan)
	if err != nil {
		return nil, err
	}
	return s.toForms(ctx, items)
}

// Register 报名会议，占用一个座位
func (s *ConferenceService) Register(ctx context.Context, u *auth.User, websafeKey string) (*BooleanMessage, error) {
	return s.registration(ctx, u, websafeKey, true)
}

// Unregister 取消报名，未报名时返回 false
func (s *ConferenceService) Unregister(ctx context.Context, u *auth.User, websafeKey string) (*BooleanMessage, error) {
	return s.registration(ctx, u, websafeKey, false)
}

func (s *ConferenceService) registration(ctx context.Context, u *auth.User, websafeKey string, register bool) (*BooleanMessage, error) {
	if err := requireUser(u); err != nil {
		return nil, err
	}
	key, err := domain.DecodeKind(websafeKey, domain.KindConference)
	if err != nil {
		return nil, err
	}

	result := false
	err = s.repos.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.profiles.profileOf(ctx, u)
		if err != nil {
			return err
		}
		c, err := s.repos.Conferences().Get(ctx, key)
		if err != nil {
			return err
		}
		wsck := c.WebsafeKey()

		if register {
			if p.IsAttending(wsck) {
				return conflict("You have already registered for this conference")
			}
			if c.SeatsAvailable <= 0 {
				return conflict("There are no seats available.")
			}
			p.Attend(wsck)
			c.SeatsAvailable--
		} else {
			if !p.Leave(wsck) {
				return nil
			}
			c.SeatsAvailable++
		}

		if err := s.repos.Profiles().Save(ctx, p); err != nil {
			return err
		}
		if err := s.repos.Conferences().Save(ctx, c); err != nil {
			return err
		}
		result = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &BooleanMessage{Data: result}, nil
}

// ListAttending 当前用户已报名的会议
func (s *ConferenceService) ListAttending(ctx context.Context, u *auth.User) (*ConferenceForms, error) {
	p, err := s.profiles.profileOf(ctx, u)
	if err != nil {
		return nil, err
	}
	keys := make([]*domain.Key, 0, len(p.ConferenceKeysToAttend))
	for _, wsck := range p.ConferenceKeysToAttend {
		key, err := domain.DecodeKind(wsck, domain.KindConference)
		if err != nil {
			s.logger.Warn(ctx, "skipping malformed registration", logging.String("key", wsck), logging.Error(err))
			continue
		}
		keys = append(keys, key)
	}
	items, err := s.repos.Conferences().GetMulti(ctx, keys)
	if err != nil {
		return nil, err
	}
	return s.toForms(ctx, items)
}

// toForms 映射会议列表并填充组织者显示名
func (s *ConferenceService) toForms(ctx context.Context, items []*domain.Conference) (*ConferenceForms, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, c := range items {
		if !seen[c.OrganizerUserID] {
			seen[c.OrganizerUserID] = true
			ids = append(ids, c.OrganizerUserID)
		}
	}
	names, err := s.profiles.displayNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := &ConferenceForms{Items: make([]ConferenceForm, 0, len(items))}
	for _, c := range items {
		out.Items = append(out.Items, conferenceToForm(c, names[c.OrganizerUserID]))
	}
	return out, nil
}

// isNotFound 仓储未找到
func isNotFound(err error) bool {
	return stdErrors.Is(err, domain.ErrEntityNotFound)
}
