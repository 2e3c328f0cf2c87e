package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "driver syntax untouched",
			in:   "u:p@tcp(127.0.0.1:3306)/users?parseTime=true",
			want: "u:p@tcp(127.0.0.1:3306)/users?parseTime=true",
		},
		{
			name: "url with defaults",
			in:   "mysql://root:secret@db:3306/users",
			want: "root:secret@tcp(db:3306)/users?charset=utf8mb4&parseTime=true",
		},
		{
			name: "jdbc params and overrides",
			in:   "jdbc:mysql://db:3306/users?useSSL=false&characterEncoding=utf8&serverTimezone=UTC&useUnicode=true",
			user: "app", pass: "pw",
			want: "app:pw@tcp(db:3306)/users?charset=utf8&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "query credentials",
			in:   "mysql://db/users?user=q&password=z",
			want: "q:z@tcp(db)/users?charset=utf8mb4&parseTime=true",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db:3306)/users", maskDSN("root:secret@tcp(db:3306)/users"))
	assert.Equal(t, "tcp(db)/users", maskDSN("tcp(db)/users"))
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewGorm_SQLiteMemory(t *testing.T) {
	db, err := NewGorm(Opts{
		Driver:       "sqlite",
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer Close(db)

	assert.NoError(t, Ping(context.Background(), db))
	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
