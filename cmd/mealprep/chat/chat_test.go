package chatcmder_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/mealprep/cmd/mealprep/chat"
	"github.com/papercomputeco/mealprep/pkg/dotdir"
	testutils "github.com/papercomputeco/mealprep/pkg/utils/test"
)

const planReply = "# Week plan\n\n- Oats, see https://recipes.example.com/oats\n- **Lentil** soup"

var _ = Describe("NewChatCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Use).To(Equal("chat"))
	})

	It("has registry flags with config defaults", func() {
		cmd := chatcmder.NewChatCmd()

		flag := cmd.Flags().Lookup("agent-url")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("http://localhost:8000"))

		flag = cmd.Flags().Lookup("streaming")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("true"))

		flag = cmd.Flags().Lookup("output")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("o"))
		Expect(flag.DefValue).To(Equal("meal-plan.pdf"))
	})

	It("has --export, --new, and --raw flags", func() {
		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Flags().Lookup("export")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("new")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("raw")).NotTo(BeNil())
	})
})

var _ = Describe("Chat command execution", func() {
	var (
		fake      *testutils.FakeAgent
		configDir string
		out       *bytes.Buffer
		errOut    *bytes.Buffer
	)

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}
		errOut = &bytes.Buffer{}
	})

	AfterEach(func() {
		if fake != nil {
			fake.Close()
			fake = nil
		}
	})

	run := func(input string, args ...string) error {
		root := &cobra.Command{Use: "mealprep"}
		root.PersistentFlags().BoolP("debug", "d", false, "")
		root.PersistentFlags().String("config-dir", "", "")
		root.AddCommand(chatcmder.NewChatCmd())

		root.SetIn(strings.NewReader(input))
		root.SetOut(out)
		root.SetErr(errOut)
		root.SetArgs(append([]string{"chat", "--config-dir", configDir, "--agent-url", fake.URL}, args...))
		return root.Execute()
	}

	It("streams a reply and remembers the agent session", func() {
		fake = testutils.NewFakeAgent("hello there friend")

		Expect(run("hi\n/exit\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("hello there friend"))
		Expect(fake.Messages()).To(Equal([]string{"hi"}))

		state, err := dotdir.NewManager().LoadSessionState(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).NotTo(BeNil())
		Expect(fake.Sessions()).To(ConsistOf(state.SessionID))
		Expect(state.AppName).To(Equal("app"))
		Expect(state.UserID).To(Equal("u_999"))
	})

	It("prints the whole reply without streaming", func() {
		fake = testutils.NewFakeAgent("a calm reply")

		Expect(run("hi\n", "--streaming=false", "--raw")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("a calm reply"))
		Expect(out.String()).To(ContainSubstring("Waiting for the agent"))
	})

	It("resumes the saved session", func() {
		fake = testutils.NewFakeAgent("again")
		Expect(dotdir.NewManager().SaveSessionState(&dotdir.SessionState{
			SessionID: "saved-session",
			UserID:    "u_999",
			AppName:   "app",
		}, configDir)).To(Succeed())

		Expect(run("hello\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("saved-session"))
		Expect(fake.Sessions()).To(BeEmpty())
	})

	It("starts a new session with --new", func() {
		fake = testutils.NewFakeAgent("fresh")
		Expect(dotdir.NewManager().SaveSessionState(&dotdir.SessionState{
			SessionID: "saved-session",
			UserID:    "u_999",
			AppName:   "app",
		}, configDir)).To(Succeed())

		Expect(run("hello\n", "--new")).To(Succeed())
		Expect(fake.Sessions()).To(HaveLen(1))
		Expect(fake.Sessions()[0]).NotTo(Equal("saved-session"))
	})

	It("opens a new session after /new", func() {
		fake = testutils.NewFakeAgent("one", "two")

		Expect(run("first\n/new\nsecond\n")).To(Succeed())
		Expect(fake.Sessions()).To(HaveLen(2))
		Expect(fake.Messages()).To(Equal([]string{"first", "second"}))
	})

	It("reports agent errors and keeps chatting", func() {
		fake = testutils.NewFakeAgent("unused")
		fake.RunError = "model overloaded"

		Expect(run("hi\n/exit\n")).To(Succeed())
		Expect(errOut.String()).To(ContainSubstring("model overloaded"))
	})

	It("exports meal plans with --export", func() {
		fake = testutils.NewFakeAgent(planReply)
		output := filepath.Join(configDir, "week.pdf")

		Expect(run("plan my week\n", "--streaming=false", "--raw", "--export", "-o", output)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Exporting plan to"))

		data, err := os.ReadFile(output)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data[:4])).To(Equal("%PDF"))
	})

	It("does not export ordinary replies", func() {
		fake = testutils.NewFakeAgent("just chatting")
		output := filepath.Join(configDir, "week.pdf")

		Expect(run("hi\n", "--export", "-o", output)).To(Succeed())
		Expect(output).NotTo(BeAnExistingFile())
	})
})
