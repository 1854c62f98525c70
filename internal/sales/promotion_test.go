package sales

import "testing"

func TestDeriveGroupName(t *testing.T) {
	cases := []struct {
		last string
		next int
		want string
	}{
		{"Front 5", 6, "Front 6"},
		{"Java12", 13, "Java13"},
		{"QA Group 9", 10, "QA Group 10"},
		{"Design", 2, "Design2"},
		{"Qrup 3 axşam 3", 4, "Qrup  axşam 4"}, // цифры выкидываются все, пробелы остаются
	}
	for _, tc := range cases {
		if got := DeriveGroupName(tc.last, tc.next); got != tc.want {
			t.Errorf("DeriveGroupName(%q, %d) = %q, ожидали %q", tc.last, tc.next, got, tc.want)
		}
	}
}
