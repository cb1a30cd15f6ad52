// SPDX-License-Identifier: MPL-2.0

package render

import (
	"strings"
	"testing"

	"kiln-cli/internal/bake"
	"kiln-cli/internal/testutil/kilnfiletest"
	"kiln-cli/pkg/kilnfile"
)

func symbolicPlan(t *testing.T, kf *kilnfile.Kilnfile) *bake.Plan {
	t.Helper()
	expanded, err := bake.Expand(kf, kf.SymbolicArgs())
	if err != nil {
		t.Fatalf("Expand() returned unexpected error: %v", err)
	}
	plan, err := bake.New(expanded)
	if err != nil {
		t.Fatalf("New() returned unexpected error: %v", err)
	}
	return plan
}

func TestDockerfile_Canonical(t *testing.T) {
	t.Parallel()

	got := Dockerfile(symbolicPlan(t, kilnfiletest.Canonical()))

	if !strings.HasPrefix(got, "# Generated by kiln") {
		t.Errorf("output should start with the generated header, got:\n%s", got[:80])
	}

	checks := []string{
		"FROM pytorch/pytorch:1.1.0-cuda10.0-cudnn7.5-runtime\n",
		"ARG GID\n",
		"ARG PASSWD\n",
		"ARG JUPYTER_PORT=8888\n",
		"RUN apt-get update\n",
		"RUN apt-get install -y build-essential libglib2.0-0 libsm6 libxext6 libxrender-dev\n",
		"RUN apt-get install -y verilator nano zsh rsync\n",
		"RUN pip install jupyter\n",
		"RUN pip install pygments==2.4.1\n",
		`RUN echo "StrictHostKeyChecking no" >> /etc/ssh/ssh_config` + "\n",
		"RUN git clone https://github.com/Xilinx/brevitas.git /workspace/brevitas\n",
		"RUN git -C /workspace/brevitas checkout 989cdfdba4700fdd900ba0b25a820591d561c21a\n",
		`ENV PYTHONPATH="/workspace/finn/src:/workspace/brevitas/src:/workspace/cnpy:/workspace/finn-hlslib:/workspace/pyverilator"` + "\n",
		`ENV BOARD_FILES="/workspace/PYNQ-HelloWorld/boards"` + "\n",
		"RUN groupadd -g ${GID} ${GNAME}\n",
		"RUN useradd -m -u ${UID} -g ${GNAME} -d /home/${UNAME} ${UNAME}\n",
		"RUN usermod -aG sudo ${UNAME}\n",
		`RUN echo "${UNAME}:${PASSWD}" | chpasswd` + "\n",
		`RUN echo "root:${PASSWD}" | chpasswd` + "\n",
		"RUN ln -s /workspace /home/${UNAME}/workspace\n",
		"RUN chown -R ${UNAME}:${GNAME} /home/${UNAME}\n",
		"USER ${UNAME}\n",
		"RUN echo 'source /opt/vendor/settings.sh' >> /home/${UNAME}/.bashrc\n",
		"EXPOSE ${JUPYTER_PORT}\n",
		"EXPOSE ${NETRON_PORT}\n",
		"WORKDIR /workspace/finn\n",
		"# Packages\n",
		"# Dependencies\n",
		"# Environment\n",
		"# Account\n",
		"# Shell\n",
		"# Image surface\n",
	}
	for _, check := range checks {
		if !strings.Contains(got, check) {
			t.Errorf("expected %q in rendered Dockerfile, got:\n%s", check, got)
		}
	}
}

func TestDockerfile_StageOrder(t *testing.T) {
	t.Parallel()

	got := Dockerfile(symbolicPlan(t, kilnfiletest.Canonical()))

	markers := []string{
		"FROM ",
		"RUN apt-get update",
		"RUN git clone",
		"ENV PYTHONPATH",
		"RUN groupadd",
		"USER ",
		"RUN echo 'source",
		"EXPOSE ",
		"WORKDIR ",
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(got, m)
		if idx < 0 {
			t.Fatalf("marker %q missing from rendered Dockerfile", m)
		}
		if idx < last {
			t.Errorf("marker %q appears before the preceding stage", m)
		}
		last = idx
	}
}

func TestDockerfile_SecretsNeverRendered(t *testing.T) {
	t.Parallel()

	kf := kilnfiletest.New(
		kilnfiletest.WithArg("TOKEN", "sekrit-default", true),
		kilnfiletest.WithArg("UID", "1000", false),
	)
	got := Dockerfile(symbolicPlan(t, kf))

	if strings.Contains(got, "sekrit-default") {
		t.Errorf("secret default leaked into rendered output:\n%s", got)
	}
	if !strings.Contains(got, "ARG TOKEN\n") {
		t.Errorf("secret arg should still be declared without a default:\n%s", got)
	}
	if !strings.Contains(got, "ARG UID=1000\n") {
		t.Errorf("non-secret default should be declared inline:\n%s", got)
	}
}

func TestDockerfile_BaseImagePlaceholder(t *testing.T) {
	t.Parallel()

	kf := kilnfiletest.New(
		kilnfiletest.WithBase("${REGISTRY}/ubuntu:24.04"),
		kilnfiletest.WithArg("REGISTRY", "docker.io", false),
	)
	got := Dockerfile(symbolicPlan(t, kf))

	want := "ARG REGISTRY\nFROM ${REGISTRY}/ubuntu:24.04\n"
	if !strings.Contains(got, want) {
		t.Errorf("base arg should be declared before FROM, got:\n%s", got)
	}
}

func TestDockerfile_RCLineQuoting(t *testing.T) {
	t.Parallel()

	kf := kilnfiletest.New(kilnfiletest.WithShellRC(`export PS1='\u@\h '`))
	got := Dockerfile(symbolicPlan(t, kf))

	want := `RUN echo 'export PS1='\''\u@\h '\''' >> /root/.bashrc`
	if !strings.Contains(got, want) {
		t.Errorf("rc line with single quotes should be escaped, got:\n%s", got)
	}
}

func TestDockerfile_Labels(t *testing.T) {
	t.Parallel()

	kf := kilnfiletest.New()
	kf.Labels = map[string]string{"maintainer": "platform team", "org.opencontainers.image.title": "dev image"}
	got := Dockerfile(symbolicPlan(t, kf))

	title := strings.Index(got, `LABEL "org.opencontainers.image.title"="dev image"`)
	maint := strings.Index(got, `LABEL "maintainer"="platform team"`)
	if title < 0 || maint < 0 {
		t.Fatalf("labels missing from rendered Dockerfile:\n%s", got)
	}
	if maint > title {
		t.Error("labels should be emitted in sorted key order")
	}
}
