package pending

import "context"

type pendingKey struct {
	scheduleId int
	date       string
}

type StubRepo struct {
	nextId int
	data   map[int]PendingOccurrence
	unique map[pendingKey]int
}

func NewStubRepo() *StubRepo {
	return &StubRepo{
		data:   map[int]PendingOccurrence{},
		unique: map[pendingKey]int{},
	}
}

func (s *StubRepo) Insert(ctx context.Context, userId int, occurrence PendingOccurrence) (bool, error) {
	key := pendingKey{scheduleId: occurrence.ScheduleId, date: occurrence.PlannedDate.Format(dateLayout)}
	if _, exists := s.unique[key]; exists {
		return false, nil
	}
	s.nextId++
	occurrence.ID = s.nextId
	s.data[occurrence.ID] = occurrence
	s.unique[key] = occurrence.ID
	return true, nil
}

func (s *StubRepo) Get(ctx context.Context, userId int, id int) (PendingOccurrence, error) {
	occurrence, ok := s.data[id]
	if !ok {
		return PendingOccurrence{}, ErrPendingNotFound
	}
	return occurrence, nil
}

func (s *StubRepo) GetAll(ctx context.Context, userId int) ([]PendingOccurrence, error) {
	occurrences := make([]PendingOccurrence, 0, len(s.data))
	for id := 1; id <= s.nextId; id++ {
		if occurrence, ok := s.data[id]; ok {
			occurrences = append(occurrences, occurrence)
		}
	}
	return occurrences, nil
}

func (s *StubRepo) GetBySchedule(ctx context.Context, userId int, scheduleId int) ([]PendingOccurrence, error) {
	var occurrences []PendingOccurrence
	for id := 1; id <= s.nextId; id++ {
		if occurrence, ok := s.data[id]; ok && occurrence.ScheduleId == scheduleId {
			occurrences = append(occurrences, occurrence)
		}
	}
	return occurrences, nil
}

func (s *StubRepo) Delete(ctx context.Context, userId int, id int) (bool, error) {
	occurrence, ok := s.data[id]
	if !ok {
		return false, nil
	}
	delete(s.data, id)
	delete(s.unique, pendingKey{scheduleId: occurrence.ScheduleId, date: occurrence.PlannedDate.Format(dateLayout)})
	return true, nil
}

func (s *StubRepo) DeleteForSchedule(ctx context.Context, userId int, scheduleId int) (int, error) {
	count := 0
	for id, occurrence := range s.data {
		if occurrence.ScheduleId == scheduleId {
			delete(s.data, id)
			delete(s.unique, pendingKey{scheduleId: scheduleId, date: occurrence.PlannedDate.Format(dateLayout)})
			count++
		}
	}
	return count, nil
}

func (s *StubRepo) Cleanup() {
	s.data = map[int]PendingOccurrence{}
	s.unique = map[pendingKey]int{}
	s.nextId = 0
}
