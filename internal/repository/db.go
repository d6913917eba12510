package repository

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"attendance-bot/internal/logging"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrUserExists          = errors.New("user already exists")
	ErrDuplicateAttendance = errors.New("attendance already recorded for this date")
	ErrNotPending          = errors.New("request is no longer pending")
)

// Open connects to a sqlite database. Unique violations come back as gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logrus.WithError(err).Warn("Failed to enable foreign keys")
	}
	return db, nil
}

// Repositories groups every repository over one database.
type Repositories struct {
	Users      UserRepository
	Schedules  WorkScheduleRepository
	Holidays   HolidayRepository
	Leaves     LeaveRequestRepository
	Trips      BusinessTripRepository
	SickLeaves SickLeaveRepository
	Attendance AttendanceRepository
	Balances   LeaveBalanceRepository
}

func NewRepositories(db *gorm.DB, logger *logrus.Logger) (*Repositories, error) {
	logger = logging.OrNew(logger)
	var (
		r   Repositories
		err error
	)
	if r.Users, err = NewGormUserRepository(db, logger); err != nil {
		return nil, err
	}
	if r.Schedules, err = NewGormWorkScheduleRepository(db, logger); err != nil {
		return nil, err
	}
	if r.Holidays, err = NewGormHolidayRepository(db, logger); err != nil {
		return nil, err
	}
	if r.Leaves, err = NewGormLeaveRequestRepository(db, logger); err != nil {
		return nil, err
	}
	if r.Trips, err = NewGormBusinessTripRepository(db, logger); err != nil {
		return nil, err
	}
	if r.SickLeaves, err = NewGormSickLeaveRepository(db, logger); err != nil {
		return nil, err
	}
	if r.Attendance, err = NewGormAttendanceRepository(db, logger); err != nil {
		return nil, err
	}
	if r.Balances, err = NewGormLeaveBalanceRepository(db, logger); err != nil {
		return nil, err
	}
	return &r, nil
}
