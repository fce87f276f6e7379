package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gexec"
)

// writeSlotScript returns a script printing a slot inside the current epoch
// for the first calls invocations and a slot past the boundary afterwards.
func writeSlotScript(dir string, calls int) string {
	script := filepath.Join(dir, "slot.sh")
	content := fmt.Sprintf(`#!/bin/sh
f=%q
n=$(cat "$f" 2>/dev/null || echo 0)
echo $((n+1)) > "$f"
if [ "$n" -lt %d ]; then echo 410000; else echo 480000; fi
`, filepath.Join(dir, "calls"), calls)
	Expect(os.WriteFile(script, []byte(content), 0o755)).To(Succeed())
	return script
}

var _ = Describe("epochstat", func() {
	It("exits with code 1 when the process does not exist", func() {
		cmd := exec.Command(binaryPath, "99999999")
		session, err := gexec.Start(cmd, GinkgoWriter, GinkgoWriter)
		Expect(err).NotTo(HaveOccurred())

		Eventually(session).Should(gexec.Exit(1))
		Expect(string(session.Out.Contents())).To(Equal("Specified process is not alive!\n"))
	})

	It("fails when the oracle command is unavailable", func() {
		target := exec.Command("sleep", "30")
		Expect(target.Start()).To(Succeed())
		DeferCleanup(func() { _ = target.Process.Kill() })

		cmd := exec.Command(binaryPath, strconv.Itoa(target.Process.Pid),
			"--oracle-command", "/nonexistent/solana slot",
		)
		session, err := gexec.Start(cmd, GinkgoWriter, GinkgoWriter)
		Expect(err).NotTo(HaveOccurred())

		Eventually(session).Should(gexec.Exit(1))
		Expect(session.Out.Contents()).To(BeEmpty())
	})

	It("samples a running process until the epoch boundary", func() {
		target := exec.Command("sleep", "30")
		Expect(target.Start()).To(Succeed())
		DeferCleanup(func() { _ = target.Process.Kill() })

		script := writeSlotScript(GinkgoT().TempDir(), 5)
		cmd := exec.Command(binaryPath, strconv.Itoa(target.Process.Pid), "10",
			"--oracle-command", "sh "+script,
			"--output", "json",
		)
		session, err := gexec.Start(cmd, GinkgoWriter, GinkgoWriter)
		Expect(err).NotTo(HaveOccurred())

		Eventually(session).Should(gexec.Exit(0))
		Expect(string(session.Out.Contents())).To(ContainSubstring(`"sleep"`))
	})
})
