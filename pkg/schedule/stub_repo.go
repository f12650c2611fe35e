package schedule

import "context"

type StubRepo struct {
	nextId int
	data   map[int]Schedule
}

func NewStubRepo() *StubRepo {
	return &StubRepo{data: map[int]Schedule{}}
}

func (s *StubRepo) Store(ctx context.Context, userId int, schedule Schedule) (int, error) {
	s.nextId++
	schedule.ID = s.nextId
	s.data[schedule.ID] = schedule
	return schedule.ID, nil
}

func (s *StubRepo) Get(ctx context.Context, userId int, id int) (Schedule, error) {
	schedule, ok := s.data[id]
	if !ok {
		return Schedule{}, ErrScheduleNotFound
	}
	return schedule, nil
}

func (s *StubRepo) GetAll(ctx context.Context, userId int, includeInactive bool) ([]Schedule, error) {
	schedules := make([]Schedule, 0, len(s.data))
	for id := 1; id <= s.nextId; id++ {
		schedule, ok := s.data[id]
		if !ok {
			continue
		}
		if schedule.IsActive || includeInactive {
			schedules = append(schedules, schedule)
		}
	}
	return schedules, nil
}

func (s *StubRepo) Update(ctx context.Context, userId int, schedule Schedule) (bool, error) {
	if _, ok := s.data[schedule.ID]; !ok {
		return false, nil
	}
	s.data[schedule.ID] = schedule
	return true, nil
}

func (s *StubRepo) Deactivate(ctx context.Context, userId int, id int) (bool, error) {
	schedule, ok := s.data[id]
	if !ok {
		return false, nil
	}
	schedule.IsActive = false
	s.data[id] = schedule
	return true, nil
}

func (s *StubRepo) Cleanup() {
	s.data = map[int]Schedule{}
	s.nextId = 0
}
