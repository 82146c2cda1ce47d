package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TeacherSessionKey returns the cache key for a teacher's login session.
func (r *CacheKeyStruct) TeacherSessionKey(teacherID string) string {
	return fmt.Sprintf("login:%s", teacherID)
}

// ExamPayloadKey returns the cache key for an exam's student payload.
func (r *CacheKeyStruct) ExamPayloadKey(examID string) string {
	return fmt.Sprintf("exam:%s:payload", examID)
}

// ExamTeacherKey returns the cache key for an exam's owning teacher id.
func (r *CacheKeyStruct) ExamTeacherKey(examID string) string {
	return fmt.Sprintf("exam:%s:teacher", examID)
}

var CacheKey = NewCacheKeyStruct()
