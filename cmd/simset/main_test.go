package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	. "go.chromium.org/luci/common/testing/assertions"

	"github.com/KyungWonPark/Microemulsion/internal/shell"
)

func writeConfig(t *testing.T, dir string) string {
	path := filepath.Join(dir, "simset.yaml")
	doc := fmt.Sprintf(`
email_address: foo@bar
wall_time_hours: 2
sim_set_name: Small
end_time: 3
threads_per_bundle: 2
job_files_folder: %s
`, filepath.Join(dir, "Jobs"))
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScheduleRun(t *testing.T) {
	ctx := context.Background()

	Convey("schedule", t, func() {
		dir := t.TempDir()
		fake := &shell.FakeRunner{Stdout: "77"}
		c := &scheduleRun{runner: fake}
		c.configPath = writeConfig(t, dir)

		Convey("submits every bundle and logs them", func() {
			c.logPath = filepath.Join(dir, "submissions.csv")
			var out bytes.Buffer
			So(c.innerRun(ctx, &out), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "--> Jobs scheduled: 3\n--> Simulations scheduled: 6\n")
			So(fake.Calls(), ShouldHaveLength, 3)

			data, err := os.ReadFile(c.logPath)
			So(err, ShouldBeNil)
			So(strings.Count(string(data), ",77,0"), ShouldEqual, 3)
		})

		Convey("dry run leaves the queue alone", func() {
			c.dryRun = true
			So(c.innerRun(ctx, &bytes.Buffer{}), ShouldBeNil)
			So(fake.Calls(), ShouldBeEmpty)
		})

		Convey("needs a config", func() {
			c.configPath = ""
			So(c.innerRun(ctx, &bytes.Buffer{}), ShouldErrLike, "-config")
		})
	})
}

func TestListRun(t *testing.T) {
	Convey("list prints bundles without writing job files", t, func() {
		dir := t.TempDir()
		c := &listRun{}
		c.configPath = writeConfig(t, dir)

		var out bytes.Buffer
		So(c.innerRun(context.Background(), &out), ShouldBeNil)
		So(strings.Count(out.String(), "# msub -m bea -M foo@bar"), ShouldEqual, 3)
		So(strings.Count(out.String(), "hostname; "), ShouldEqual, 6)

		_, err := os.Stat(filepath.Join(dir, "Jobs"))
		So(os.IsNotExist(err), ShouldBeTrue)
	})
}
