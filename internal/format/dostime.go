package format

import "time"

// TimeToDos converts t to MS-DOS date and time fields. DOS time has
// two-second resolution and cannot represent dates before 1980; such
// times are clamped to the epoch start.
func TimeToDos(t time.Time) (date, tim uint16) {
	if t.Year() < 1980 {
		return 0x21, 0 // 1980-01-01 00:00:00
	}
	date = uint16((t.Year()-1980)<<9 | int(t.Month())<<5 | t.Day())
	tim = uint16(t.Hour()<<11 | t.Minute()<<5 | t.Second()/2)
	return date, tim
}

// DosToTime converts MS-DOS date and time fields to a local time.Time.
func DosToTime(date, tim uint16) time.Time {
	return time.Date(
		int(date>>9)+1980,
		time.Month(date>>5&0xF),
		int(date&0x1F),
		int(tim>>11),
		int(tim>>5&0x3F),
		int(tim&0x1F)*2,
		0,
		time.Local,
	)
}
